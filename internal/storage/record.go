package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskmaster/internal/model"
	"gopkg.in/yaml.v3"
)

const timeLayout = time.RFC3339Nano

// Record is the on-disk shape of one task inside the slot.
type Record struct {
	ID        string  `json:"id" yaml:"id"`
	Text      string  `json:"text" yaml:"text"`
	Completed bool    `json:"completed" yaml:"completed"`
	CreatedAt string  `json:"createdAt" yaml:"createdAt"`
	DueDate   *string `json:"dueDate" yaml:"dueDate"`
	Priority  string  `json:"priority,omitempty" yaml:"priority"`
}

func ToRecord(t model.Task) Record {
	return Record{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: formatTime(t.CreatedAt),
		DueDate:   nullTime(t.DueDate),
		Priority:  string(t.Priority),
	}
}

func (r Record) Task() (model.Task, error) {
	createdAt, err := parseRequiredTime(r.CreatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %q created_at: %w", r.ID, err)
	}
	dueDate, err := parseNullableTime(r.DueDate)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %q due_date: %w", r.ID, err)
	}
	priority := model.Priority(r.Priority)
	if r.Priority == "" {
		priority = model.PriorityMedium
	}
	out := model.Task{
		ID:        r.ID,
		Text:      r.Text,
		Completed: r.Completed,
		CreatedAt: createdAt,
		DueDate:   dueDate,
		Priority:  priority,
	}
	if err := out.Validate(); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// Encode serializes the collection in order.
func Encode(tasks []model.Task) ([]byte, error) {
	records := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, ToRecord(t))
	}
	return json.Marshal(records)
}

// Decode parses a slot payload. An empty or whitespace-only payload is an
// empty collection; anything else that fails to parse into valid, uniquely
// identified tasks is ErrMalformed.
func Decode(raw []byte) ([]model.Task, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return []model.Task{}, nil
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]model.Task, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		task, err := rec.Task()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, i, err)
		}
		if seen[task.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformed, task.ID)
		}
		seen[task.ID] = true
		out = append(out, task)
	}
	return out, nil
}

// EncodeYAML renders the same records as Encode, as a YAML sequence.
func EncodeYAML(tasks []model.Task) ([]byte, error) {
	records := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, ToRecord(t))
	}
	return yaml.Marshal(records)
}

func formatTime(v time.Time) string {
	return v.UTC().Format(timeLayout)
}

func nullTime(v *time.Time) *string {
	if v == nil || v.IsZero() {
		return nil
	}
	s := formatTime(*v)
	return &s
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(timeLayout, v)
}

func parseNullableTime(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	tm, err := time.Parse(timeLayout, *v)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}
