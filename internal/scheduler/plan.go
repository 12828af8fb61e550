package scheduler

import (
	"time"

	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/view"
)

// Plan lists the events worth waiting for from now: one KindDue per open task
// due in the future, plus a KindRollover at the next local midnight.
func Plan(tasks []model.Task, now time.Time) []DueEvent {
	out := make([]DueEvent, 0, len(tasks)+1)
	for _, t := range tasks {
		if t.Completed || !t.HasDueDate() || !t.DueDate.After(now) {
			continue
		}
		out = append(out, DueEvent{TaskID: t.ID, Text: t.Text, Kind: KindDue, At: *t.DueDate})
	}
	out = append(out, DueEvent{Kind: KindRollover, At: view.StartOfDay(now).AddDate(0, 0, 1)})
	return out
}
