package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrValidation      = errors.New("model: validation failed")
	ErrInvalidArgument = errors.New("model: invalid argument")
	ErrInvalidPriority = fmt.Errorf("%w: invalid task priority", ErrInvalidArgument)
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority in display order, highest first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting: high < medium < low.
// Unknown values rank after low so a sort stays total.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Next cycles high -> medium -> low -> high.
func (p Priority) Next() Priority {
	switch p {
	case PriorityHigh:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLow
	default:
		return PriorityHigh
	}
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

type Task struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
	DueDate   *time.Time
	Priority  Priority
}

func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: task id is required", ErrValidation)
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: task text is required", ErrValidation)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("%w: task created_at is required", ErrValidation)
	}
	return nil
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	return out
}

func CloneAll(in []Task) []Task {
	out := make([]Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
