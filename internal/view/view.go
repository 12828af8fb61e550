// Package view derives filtered and sorted projections of a task collection.
// Nothing here mutates its input; every call returns a fresh slice.
package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/taskmaster/internal/model"
)

type Category string

const (
	CategoryAll       Category = "all"
	CategoryActive    Category = "active"
	CategoryCompleted Category = "completed"
	CategoryDueToday  Category = "due_today"
	CategoryOverdue   Category = "overdue"
)

// Categories in tab order.
var Categories = []Category{CategoryAll, CategoryActive, CategoryCompleted, CategoryDueToday, CategoryOverdue}

func (c Category) IsValid() bool {
	switch c {
	case CategoryAll, CategoryActive, CategoryCompleted, CategoryDueToday, CategoryOverdue:
		return true
	default:
		return false
	}
}

func (c Category) Label() string {
	switch c {
	case CategoryActive:
		return "Active"
	case CategoryCompleted:
		return "Completed"
	case CategoryDueToday:
		return "Due Today"
	case CategoryOverdue:
		return "Overdue"
	default:
		return "All"
	}
}

func ParseCategory(raw string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "today":
		normalized = string(CategoryDueToday)
	case "done":
		normalized = string(CategoryCompleted)
	}
	c := Category(normalized)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unknown view %q", model.ErrInvalidArgument, raw)
	}
	return c, nil
}

type SortKey string

const (
	SortCreated  SortKey = "created"
	SortDue      SortKey = "due"
	SortPriority SortKey = "priority"
	SortManual   SortKey = "manual"
)

var SortKeys = []SortKey{SortCreated, SortDue, SortPriority, SortManual}

func (k SortKey) IsValid() bool {
	switch k {
	case SortCreated, SortDue, SortPriority, SortManual:
		return true
	default:
		return false
	}
}

// Next cycles through SortKeys in order.
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortCreated
}

func ParseSortKey(raw string) (SortKey, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "createdat", "created_at":
		normalized = string(SortCreated)
	case "duedate", "due_date":
		normalized = string(SortDue)
	}
	k := SortKey(normalized)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: unknown sort key %q", model.ErrInvalidArgument, raw)
	}
	return k, nil
}

type Options struct {
	Category Category
	Sort     SortKey
	Now      time.Time
}

// Derive filters by category, then sorts the survivors by the sort key.
func Derive(tasks []model.Task, opts Options) []model.Task {
	return Sort(Filter(tasks, opts.Category, opts.Now), opts.Sort)
}

func Filter(tasks []model.Task, c Category, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(c, t, now) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func Matches(c Category, t model.Task, now time.Time) bool {
	switch c {
	case CategoryActive:
		return !t.Completed
	case CategoryCompleted:
		return t.Completed
	case CategoryDueToday:
		return IsDueToday(t, now)
	case CategoryOverdue:
		return IsOverdue(t, now)
	default:
		return true
	}
}

// IsDueToday reports an open task whose due date falls on now's calendar day,
// in now's location.
func IsDueToday(t model.Task, now time.Time) bool {
	if t.Completed || !t.HasDueDate() {
		return false
	}
	return sameDay(t.DueDate.In(now.Location()), now)
}

// IsOverdue reports an open task due strictly before the start of now's day.
// A task due earlier today is due today, not overdue.
func IsOverdue(t model.Task, now time.Time) bool {
	if t.Completed || !t.HasDueDate() {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Sort returns a sorted copy. Every key uses a stable sort, so ties keep the
// input (manual) order.
func Sort(tasks []model.Task, key SortKey) []model.Task {
	out := model.CloneAll(tasks)
	switch key {
	case SortManual:
	case SortDue:
		sort.SliceStable(out, func(i, j int) bool {
			return dueBefore(out[i], out[j])
		})
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// dueBefore puts dated tasks ascending and undated tasks after all of them.
func dueBefore(a, b model.Task) bool {
	switch {
	case !a.HasDueDate():
		return false
	case !b.HasDueDate():
		return true
	default:
		return a.DueDate.Before(*b.DueDate)
	}
}

type Counts struct {
	All       int
	Active    int
	Completed int
	DueToday  int
	Overdue   int
}

func (c Counts) For(cat Category) int {
	switch cat {
	case CategoryActive:
		return c.Active
	case CategoryCompleted:
		return c.Completed
	case CategoryDueToday:
		return c.DueToday
	case CategoryOverdue:
		return c.Overdue
	default:
		return c.All
	}
}

// Count applies the category predicates over the full collection.
func Count(tasks []model.Task, now time.Time) Counts {
	out := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			out.Completed++
		} else {
			out.Active++
		}
		if IsDueToday(t, now) {
			out.DueToday++
		}
		if IsOverdue(t, now) {
			out.Overdue++
		}
	}
	return out
}

// Move returns the full ordering obtained by swapping id with its neighbour
// delta steps away in visible. Tasks hidden from visible keep their slots.
// The bool is false when the move is not possible.
func Move(order []string, visible []string, id string, delta int) ([]string, bool) {
	if delta == 0 {
		return nil, false
	}
	from := indexOf(visible, id)
	to := from + delta
	if from < 0 || to < 0 || to >= len(visible) {
		return nil, false
	}
	i := indexOf(order, id)
	j := indexOf(order, visible[to])
	if i < 0 || j < 0 {
		return nil, false
	}
	out := append([]string(nil), order...)
	out[i], out[j] = out[j], out[i]
	return out, true
}

func IDs(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
