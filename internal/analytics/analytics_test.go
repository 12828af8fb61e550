package analytics

import (
	"testing"
	"time"

	"github.com/sandeepkv93/taskmaster/internal/model"
)

func TestCompletionOf(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Completed: true},
		{ID: "b"},
		{ID: "c", Completed: true},
		{ID: "d"},
	}
	got := CompletionOf(tasks)
	if got.Total != 4 || got.Completed != 2 || got.Active != 2 {
		t.Fatalf("unexpected completion: %+v", got)
	}
	if got.Rate() != 0.5 {
		t.Fatalf("expected rate 0.5, got %v", got.Rate())
	}
	if CompletionOf(nil).Rate() != 0 {
		t.Fatal("expected zero rate for empty collection")
	}
}

func TestTimelineBucketsByLocalCreatedDay(t *testing.T) {
	now := time.Date(2026, 2, 9, 15, 0, 0, 0, time.UTC) // Monday
	tasks := []model.Task{
		{ID: "today-done", CreatedAt: now.Add(-time.Hour), Completed: true},
		{ID: "today-open", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "sat", CreatedAt: now.AddDate(0, 0, -2), Completed: true},
		{ID: "too-old", CreatedAt: now.AddDate(0, 0, -7)},
		{ID: "future", CreatedAt: now.AddDate(0, 0, 1)},
	}

	days := Timeline(tasks, now, 0)
	if len(days) != DefaultDays {
		t.Fatalf("expected %d buckets, got %d", DefaultDays, len(days))
	}
	if days[0].Label != "Tue" || days[6].Label != "Mon" {
		t.Fatalf("unexpected labels: first=%s last=%s", days[0].Label, days[6].Label)
	}
	if days[6].Created != 2 || days[6].Completed != 1 {
		t.Fatalf("unexpected today bucket: %+v", days[6])
	}
	if days[4].Created != 1 || days[4].Completed != 1 {
		t.Fatalf("unexpected saturday bucket: %+v", days[4])
	}
	total := 0
	for _, d := range days {
		total += d.Created
	}
	if total != 3 {
		t.Fatalf("expected tasks outside the window to be skipped, counted %d", total)
	}
	if Peak(days) != 2 {
		t.Fatalf("expected peak 2, got %d", Peak(days))
	}
}

func TestTimelineUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2026, 2, 10, 1, 0, 0, 0, loc)
	// 20:00 UTC on the 9th is already the 10th in UTC+9.
	created := time.Date(2026, 2, 9, 20, 0, 0, 0, time.UTC)

	days := Timeline([]model.Task{{ID: "a", CreatedAt: created}}, now, 3)
	if days[2].Created != 1 {
		t.Fatalf("expected task in today's bucket, got %+v", days)
	}
}

func TestTimelineCapsWindow(t *testing.T) {
	now := time.Date(2026, 2, 9, 15, 0, 0, 0, time.UTC)
	days := Timeline(nil, now, 1_000_000)
	if len(days) != MaxDays {
		t.Fatalf("expected %d buckets, got %d", MaxDays, len(days))
	}
	if last := days[len(days)-1].Date; !last.Equal(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected window to end today, got %v", last)
	}
	if got := len(Timeline(nil, now, 0)); got != DefaultDays {
		t.Fatalf("expected default window of %d, got %d", DefaultDays, got)
	}
}
