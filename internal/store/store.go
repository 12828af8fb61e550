// Package store owns the ordered task collection. Every mutation goes through
// a Store method, is applied in memory and is then written back to the slot as
// a full-collection overwrite before the method returns.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/storage"
)

var (
	ErrPersistence  = errors.New("store: persistence failed")
	ErrCorruptState = errors.New("store: stored data is corrupt")
	errIDExhausted  = errors.New("store: could not allocate a unique task id")
)

const maxIDAttempts = 8

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type Store struct {
	mu     sync.Mutex
	slot   storage.Slot
	now    func() time.Time
	nextID func() string
	logger *log.Logger
	tasks  []model.Task
}

func New(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		now:    time.Now,
		nextID: uuid.NewString,
		logger: log.New(io.Discard),
		tasks:  make([]model.Task, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds a store and loads it. A corrupt slot still yields a usable,
// empty store alongside an error wrapping ErrCorruptState.
func Open(ctx context.Context, slot storage.Slot, opts ...Option) (*Store, error) {
	s := New(slot, opts...)
	return s, s.Load(ctx)
}

// Load replaces the in-memory collection with the slot contents. On corrupt
// data the collection is emptied, the raw bytes are quarantined when the slot
// supports it, and the slot itself is left untouched.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make([]model.Task, 0)

	raw, err := s.slot.Read(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("slot empty, starting fresh")
			return nil
		}
		return fmt.Errorf("%w: read: %v", ErrPersistence, err)
	}

	tasks, err := storage.Decode(raw)
	if err != nil {
		where := ""
		if q, ok := s.slot.(storage.Quarantiner); ok {
			loc, qErr := q.Quarantine(ctx, raw)
			if qErr != nil {
				s.logger.Error("quarantine failed", "err", qErr)
			} else {
				where = loc
			}
		}
		s.logger.Error("stored tasks unreadable", "err", err, "quarantine", where)
		if where != "" {
			return fmt.Errorf("%w: %v (copy kept at %s)", ErrCorruptState, err, where)
		}
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	s.tasks = tasks
	s.logger.Debug("tasks loaded", "count", len(tasks))
	return nil
}

// Add appends a new task. Blank text is rejected with model.ErrValidation and
// nothing changes. A returned error wrapping ErrPersistence means the task
// exists in memory but may not survive a restart.
func (s *Store) Add(ctx context.Context, text string, due *time.Time) (model.Task, error) {
	if strings.TrimSpace(text) == "" {
		return model.Task{}, fmt.Errorf("%w: task text is required", model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freshIDLocked()
	if err != nil {
		return model.Task{}, err
	}
	task := model.Task{
		ID:        id,
		Text:      text,
		Completed: false,
		CreatedAt: s.now(),
		Priority:  model.PriorityMedium,
	}
	if due != nil && !due.IsZero() {
		d := *due
		task.DueDate = &d
	}
	s.tasks = append(s.tasks, task)
	s.logger.Debug("task added", "id", id)
	return task.Clone(), s.persistLocked(ctx)
}

// Toggle flips completion. The bool reports whether the id was found; an
// unknown id is not an error.
func (s *Store) Toggle(ctx context.Context, id string) (model.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	var out model.Task
	if idx >= 0 {
		s.tasks[idx].Completed = !s.tasks[idx].Completed
		out = s.tasks[idx].Clone()
		s.logger.Debug("task toggled", "id", id, "completed", out.Completed)
	}
	return out, idx >= 0, s.persistLocked(ctx)
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx >= 0 {
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
		s.logger.Debug("task deleted", "id", id)
	}
	return idx >= 0, s.persistLocked(ctx)
}

func (s *Store) ChangePriority(ctx context.Context, id string, p model.Priority) (bool, error) {
	if !p.IsValid() {
		return false, fmt.Errorf("%w: %q", model.ErrInvalidPriority, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx >= 0 {
		s.tasks[idx].Priority = p
		s.logger.Debug("priority changed", "id", id, "priority", p)
	}
	return idx >= 0, s.persistLocked(ctx)
}

// Reorder sets the manual order. ids must be a permutation of the current ids.
func (s *Store) Reorder(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) != len(s.tasks) {
		return fmt.Errorf("%w: reorder expects %d ids, got %d", model.ErrInvalidArgument, len(s.tasks), len(ids))
	}
	byID := make(map[string]model.Task, len(s.tasks))
	for _, t := range s.tasks {
		byID[t.ID] = t
	}
	next := make([]model.Task, 0, len(ids))
	used := make(map[string]bool, len(ids))
	for _, id := range ids {
		if used[id] {
			return fmt.Errorf("%w: duplicate id %q in reorder", model.ErrInvalidArgument, id)
		}
		task, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown id %q in reorder", model.ErrInvalidArgument, id)
		}
		used[id] = true
		next = append(next, task)
	}
	s.tasks = next
	s.logger.Debug("tasks reordered", "count", len(next))
	return s.persistLocked(ctx)
}

// ClearCompleted removes every completed task and reports how many went.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	s.tasks = kept
	s.logger.Debug("completed tasks cleared", "removed", removed)
	return removed, s.persistLocked(ctx)
}

// Tasks returns a copy of the collection in manual order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneAll(s.tasks)
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

// Resolve finds a task by exact id or by a unique id prefix.
func (s *Store) Resolve(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("%w: task id is required", model.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexLocked(ref); idx >= 0 {
		return s.tasks[idx].Clone(), nil
	}
	var match *model.Task
	for i := range s.tasks {
		if strings.HasPrefix(s.tasks[i].ID, ref) {
			if match != nil {
				return model.Task{}, fmt.Errorf("%w: id prefix %q is ambiguous", model.ErrInvalidArgument, ref)
			}
			match = &s.tasks[i]
		}
	}
	if match == nil {
		return model.Task{}, fmt.Errorf("%w: no task matches %q", model.ErrInvalidArgument, ref)
	}
	return match.Clone(), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) freshIDLocked() (string, error) {
	for range maxIDAttempts {
		id := strings.TrimSpace(s.nextID())
		if id != "" && s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", errIDExhausted
}

func (s *Store) persistLocked(ctx context.Context) error {
	payload, err := storage.Encode(s.tasks)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	if err := s.slot.Write(ctx, payload); err != nil {
		s.logger.Error("write failed", "err", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
