package store

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/storage"
	"github.com/sandeepkv93/taskmaster/internal/view"
	"pgregory.net/rapid"
)

func TestStoreOperationsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)}
		slot := storage.NewMemorySlot(nil)
		s, err := Open(ctx, slot, WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
		if err != nil {
			rt.Fatalf("open: %v", err)
		}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for range steps {
			before := s.Tasks()
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				text := rapid.StringMatching(`[a-z ]{0,8}`).Draw(rt, "text")
				_, err := s.Add(ctx, text, nil)
				after := s.Tasks()
				if strings.TrimSpace(text) == "" {
					if !errors.Is(err, model.ErrValidation) || len(after) != len(before) {
						rt.Fatalf("blank add %q: err=%v len %d -> %d", text, err, len(before), len(after))
					}
					continue
				}
				if err != nil || len(after) != len(before)+1 {
					rt.Fatalf("add %q: err=%v len %d -> %d", text, err, len(before), len(after))
				}
				last := after[len(after)-1]
				if last.Completed || last.Priority != model.PriorityMedium {
					rt.Fatalf("new task has wrong defaults: %#v", last)
				}
			case 1:
				if len(before) == 0 {
					continue
				}
				id := rapid.SampledFrom(view.IDs(before)).Draw(rt, "toggleID")
				if _, _, err := s.Toggle(ctx, id); err != nil {
					rt.Fatalf("toggle: %v", err)
				}
				if _, _, err := s.Toggle(ctx, id); err != nil {
					rt.Fatalf("toggle back: %v", err)
				}
				if !reflect.DeepEqual(s.Tasks(), before) {
					rt.Fatalf("double toggle changed the collection")
				}
				// Leave one toggle applied so later steps see completed tasks.
				if _, _, err := s.Toggle(ctx, id); err != nil {
					rt.Fatalf("toggle: %v", err)
				}
			case 2:
				order := rapid.Permutation(view.IDs(before)).Draw(rt, "order")
				if err := s.Reorder(ctx, order); err != nil {
					rt.Fatalf("reorder permutation: %v", err)
				}
				if got := view.IDs(s.Tasks()); !reflect.DeepEqual(got, order) && len(order) > 0 {
					rt.Fatalf("reorder: got %v want %v", got, order)
				}
			case 3:
				if len(before) == 0 {
					continue
				}
				ids := view.IDs(before)
				err := s.Reorder(ctx, ids[1:])
				if !errors.Is(err, model.ErrInvalidArgument) {
					rt.Fatalf("expected short reorder to fail, got %v", err)
				}
				if !reflect.DeepEqual(s.Tasks(), before) {
					rt.Fatalf("rejected reorder changed the collection")
				}
			case 4:
				done := 0
				for _, tk := range before {
					if tk.Completed {
						done++
					}
				}
				removed, err := s.ClearCompleted(ctx)
				if err != nil || removed != done {
					rt.Fatalf("clear: removed=%d want %d err=%v", removed, done, err)
				}
				for _, tk := range s.Tasks() {
					if tk.Completed {
						rt.Fatalf("completed task survived clear: %#v", tk)
					}
				}
			}
		}

		reloaded, err := Open(ctx, slot)
		if err != nil {
			rt.Fatalf("reopen: %v", err)
		}
		if !reflect.DeepEqual(view.IDs(reloaded.Tasks()), view.IDs(s.Tasks())) {
			rt.Fatalf("slot round trip lost order")
		}
	})
}
