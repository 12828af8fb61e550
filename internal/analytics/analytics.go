// Package analytics summarizes a task collection for the stats panel.
package analytics

import (
	"time"

	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/view"
)

const (
	DefaultDays = 7
	// MaxDays caps the Timeline window at one year.
	MaxDays = 366
)

type Completion struct {
	Total     int
	Completed int
	Active    int
}

// Rate is the completed share in [0, 1]. An empty collection has rate 0.
func (c Completion) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Completed) / float64(c.Total)
}

func CompletionOf(tasks []model.Task) Completion {
	out := Completion{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			out.Completed++
		}
	}
	out.Active = out.Total - out.Completed
	return out
}

type Day struct {
	Date      time.Time
	Label     string
	Created   int
	Completed int
}

// Timeline buckets tasks by the local calendar day they were created on, for
// the days ending with now's day, oldest first. Completed counts the tasks in
// each bucket that are done now; completion time is not recorded.
func Timeline(tasks []model.Task, now time.Time, days int) []Day {
	if days <= 0 {
		days = DefaultDays
	}
	days = min(days, MaxDays)
	today := view.StartOfDay(now)
	out := make([]Day, days)
	index := make(map[string]int, days)
	for i := range out {
		day := today.AddDate(0, 0, i-days+1)
		out[i] = Day{Date: day, Label: day.Format("Mon")}
		index[day.Format(time.DateOnly)] = i
	}
	for _, t := range tasks {
		i, ok := index[t.CreatedAt.In(now.Location()).Format(time.DateOnly)]
		if !ok {
			continue
		}
		out[i].Created++
		if t.Completed {
			out[i].Completed++
		}
	}
	return out
}

// Peak returns the largest Created value in days, at least 1.
func Peak(days []Day) int {
	peak := 1
	for _, d := range days {
		if d.Created > peak {
			peak = d.Created
		}
	}
	return peak
}
