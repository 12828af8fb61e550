package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/config"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/scheduler"
	"github.com/sandeepkv93/taskmaster/internal/storage"
	"github.com/sandeepkv93/taskmaster/internal/store"
	"github.com/sandeepkv93/taskmaster/internal/view"
)

var testNow = time.Date(2026, 2, 9, 15, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func newTestStore(t *testing.T, slot *storage.MemorySlot) *store.Store {
	t.Helper()
	created := testNow.Add(-time.Hour)
	n := 0
	s, err := store.Open(context.Background(), slot,
		store.WithClock(func() time.Time {
			created = created.Add(time.Minute)
			return created
		}),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		}),
	)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func newTestModel(t *testing.T, opts ...Option) (Model, *store.Store, *storage.MemorySlot) {
	t.Helper()
	slot := storage.NewMemorySlot(nil)
	st := newTestStore(t, slot)
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewModel(st, opts...), st, slot
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func addVia(t *testing.T, m Model, input string) Model {
	t.Helper()
	return press(t, m, "a", input, "enter")
}

func TestNewModelDefaults(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.Category != view.CategoryAll || m.Sort != view.SortCreated {
		t.Fatalf("unexpected defaults: %q %q", m.Category, m.Sort)
	}
	if m.Mode != ModeNormal || m.SelectedTaskID != "" {
		t.Fatalf("unexpected initial state: %+v", m.Mode)
	}
}

func TestWithConfigAppliesViewSettings(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultView = view.CategoryOverdue
	cfg.DefaultSort = view.SortManual
	cfg.DesktopNotifications = true
	m, _, _ := newTestModel(t, WithConfig(cfg))
	if m.Category != view.CategoryOverdue || m.Sort != view.SortManual || !m.DesktopEnabled {
		t.Fatalf("config not applied: %+v", m)
	}
}

func TestAddTaskWithKeyboard(t *testing.T) {
	m, st, slot := newTestModel(t)
	m = addVia(t, m, "Buy milk | yesterday")

	if m.Mode != ModeNormal {
		t.Fatalf("expected normal mode after add, got %q", m.Mode)
	}
	tasks := st.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" || !tasks[0].HasDueDate() {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
	if m.SelectedTaskID != tasks[0].ID {
		t.Fatalf("expected new task selected, got %q", m.SelectedTaskID)
	}
	if slot.Writes != 1 {
		t.Fatalf("expected one persisted write, got %d", slot.Writes)
	}
	if len(m.Notifications) == 0 || m.Notifications[len(m.Notifications)-1].Title != "Task added" {
		t.Fatalf("expected add notification, got %+v", m.Notifications)
	}
}

func TestAddRejectsBlankAndStaysInAddMode(t *testing.T) {
	m, st, _ := newTestModel(t)
	m = press(t, m, "a", "  ", "enter")
	if m.Mode != ModeAdding || !m.Status.IsError {
		t.Fatalf("expected error in add mode, got mode=%q status=%+v", m.Mode, m.Status)
	}
	if st.Len() != 0 {
		t.Fatal("blank add must not create a task")
	}
	m = press(t, m, "esc")
	if m.Mode != ModeNormal {
		t.Fatalf("expected esc to cancel add, got %q", m.Mode)
	}
}

func TestInputErrorsRaiseNotifications(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(t, m, "a", "Buy milk | someday")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil || m.Mode != ModeAdding || m.LastError == nil {
		t.Fatalf("expected add error with dismiss command, got cmd=%v mode=%q err=%v", cmd != nil, m.Mode, m.LastError)
	}
	if len(m.Notifications) != 1 || m.Notifications[0].Level != "error" {
		t.Fatalf("expected one error notification, got %+v", m.Notifications)
	}

	m = press(t, m, "esc", "/", "frobnicate")
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil || !m.Status.IsError {
		t.Fatalf("expected palette parse error, got status=%+v", m.Status)
	}
	if len(m.Notifications) != 2 || m.Notifications[1].Level != "error" {
		t.Fatalf("expected a second error notification, got %+v", m.Notifications)
	}
}

func TestToggleDeleteAndPriorityKeys(t *testing.T) {
	m, st, _ := newTestModel(t)
	m = addVia(t, m, "Buy milk")
	id := m.SelectedTaskID

	m = press(t, m, "space")
	if task, _ := st.Get(id); !task.Completed {
		t.Fatal("expected space to complete the selected task")
	}
	m = press(t, m, "x")
	if task, _ := st.Get(id); task.Completed {
		t.Fatal("expected x to reopen the selected task")
	}

	m = press(t, m, "p")
	if task, _ := st.Get(id); task.Priority != model.PriorityLow {
		t.Fatalf("expected medium to cycle to low, got %q", task.Priority)
	}

	m = press(t, m, "d")
	if st.Len() != 0 || m.SelectedTaskID != "" {
		t.Fatalf("expected task deleted and selection cleared, len=%d sel=%q", st.Len(), m.SelectedTaskID)
	}
}

func TestCategoryTabsAndCounts(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = addVia(t, m, "Buy milk | yesterday")
	m = addVia(t, m, "Write report")

	m = press(t, m, "5")
	if m.Category != view.CategoryOverdue {
		t.Fatalf("expected overdue tab, got %q", m.Category)
	}
	visible := m.visible()
	if len(visible) != 1 || visible[0].Text != "Buy milk" {
		t.Fatalf("unexpected overdue view: %#v", visible)
	}

	m = press(t, m, "1")
	visible = m.visible()
	if len(visible) != 2 || visible[0].Text != "Write report" {
		t.Fatalf("expected newest first in all view, got %#v", visible)
	}

	out := m.View()
	for _, want := range []string{"[1] All (2)", "[5] Overdue (1)", "1 need attention", "(Overdue)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestMoveRequiresManualSort(t *testing.T) {
	m, st, _ := newTestModel(t)
	m = addVia(t, m, "first")
	m = addVia(t, m, "second")

	m = press(t, m, "K")
	if !m.Status.IsError || !errors.Is(m.LastError, model.ErrInvalidArgument) {
		t.Fatalf("expected move refused outside manual sort, got %+v", m.Status)
	}

	updated, _ := m.Update(SwitchCategoryMsg{Category: view.CategoryAll})
	m = updated.(Model)
	m = press(t, m, "s", "s", "s")
	if m.Sort != view.SortManual {
		t.Fatalf("expected manual sort after cycling, got %q", m.Sort)
	}
	// selection is the second task, which sits last in manual order
	m = press(t, m, "K")
	if got := view.IDs(st.Tasks()); got[0] != m.SelectedTaskID {
		t.Fatalf("expected selected task moved to top, order=%v sel=%q", got, m.SelectedTaskID)
	}
}

func TestClearCompletedKey(t *testing.T) {
	m, st, _ := newTestModel(t)
	m = addVia(t, m, "one")
	m = press(t, m, "space")
	m = addVia(t, m, "two")

	m = press(t, m, "c")
	if st.Len() != 1 {
		t.Fatalf("expected 1 task after clear, got %d", st.Len())
	}
	if !strings.Contains(m.Status.Text, "1 task(s) removed") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestPaletteCommands(t *testing.T) {
	m, st, _ := newTestModel(t)
	m = press(t, m, "/", "add Write report due:2026-02-10 17:00", "enter")
	if m.Mode != ModeNormal {
		t.Fatalf("expected palette closed, got %q", m.Mode)
	}
	tasks := st.Tasks()
	if len(tasks) != 1 || !tasks[0].DueDate.Equal(time.Date(2026, 2, 10, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected palette add: %#v", tasks)
	}

	m = press(t, m, "/", "priority high", "enter")
	if task, _ := st.Get(tasks[0].ID); task.Priority != model.PriorityHigh {
		t.Fatalf("expected high priority, got %q", task.Priority)
	}

	m = press(t, m, "/", "show due today", "enter")
	if m.Category != view.CategoryDueToday {
		t.Fatalf("expected due today view, got %q", m.Category)
	}

	m = press(t, m, "/", "sort sideways", "enter")
	if !m.Status.IsError {
		t.Fatalf("expected error for bad sort key, got %+v", m.Status)
	}
}

func TestPersistenceFailureIsReported(t *testing.T) {
	m, st, slot := newTestModel(t)
	slot.WriteErr = errors.New("disk full")
	m = addVia(t, m, "Buy milk")

	if !m.Status.IsError || !strings.Contains(m.Status.Text, "not saved") {
		t.Fatalf("expected persistence error status, got %+v", m.Status)
	}
	if st.Len() != 1 {
		t.Fatal("expected task kept in memory")
	}
}

func TestStartupErrorShown(t *testing.T) {
	m, _, _ := newTestModel(t, WithStartupError(store.ErrCorruptState))
	if !m.Status.IsError || !errors.Is(m.LastError, store.ErrCorruptState) {
		t.Fatalf("expected startup error in status, got %+v", m.Status)
	}
}

func TestNotificationsDismissAndDesktop(t *testing.T) {
	notifier := &recordingNotifier{}
	cfg := config.Default()
	cfg.DesktopNotifications = true
	m, _, _ := newTestModel(t, WithConfig(cfg), WithNotifier(notifier))

	updated, cmd := m.Update(SetStatusMsg{Text: "ready"})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a dismiss timer command")
	}
	if len(m.Notifications) != 1 || len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d / %d", len(m.Notifications), len(notifier.sent))
	}

	updated, _ = m.Update(DismissNotificationMsg{ID: m.Notifications[0].ID})
	m = updated.(Model)
	if len(m.Notifications) != 0 {
		t.Fatalf("expected notification dismissed, got %+v", m.Notifications)
	}
}

func TestNotificationRingIsBounded(t *testing.T) {
	m, _, _ := newTestModel(t)
	for i := 0; i < maxNotifications+5; i++ {
		m.notify("n", fmt.Sprintf("body %d", i), "info")
	}
	if len(m.Notifications) != maxNotifications {
		t.Fatalf("expected %d notifications, got %d", maxNotifications, len(m.Notifications))
	}
	if m.Notifications[0].Body != "body 5" {
		t.Fatalf("expected oldest entries dropped, first=%q", m.Notifications[0].Body)
	}
}

func TestDueEventRaisesNotification(t *testing.T) {
	engine := scheduler.NewEngine(4)
	m, st, _ := newTestModel(t, WithScheduler(engine))
	m = addVia(t, m, "Call dentist | tomorrow")
	task := st.Tasks()[0]

	if engine.Pending() != 2 {
		t.Fatalf("expected due + rollover events planned, got %d", engine.Pending())
	}

	updated, cmd := m.Update(DueEventMsg{Event: scheduler.DueEvent{TaskID: task.ID, Kind: scheduler.KindDue, At: *task.DueDate}})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected follow-up commands")
	}
	last := m.Notifications[len(m.Notifications)-1]
	if last.Title != "Task due" || last.Body != "Call dentist" {
		t.Fatalf("unexpected notification: %+v", last)
	}

	updated, _ = m.Update(DueEventMsg{Event: scheduler.DueEvent{Kind: scheduler.KindRollover, At: testNow}})
	m = updated.(Model)
	if !strings.HasPrefix(m.Status.Text, "new day:") {
		t.Fatalf("unexpected rollover status: %+v", m.Status)
	}
}

func TestHelpAndAnalyticsPanels(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = addVia(t, m, "one")
	m = press(t, m, "space")

	m = press(t, m, "A")
	if !m.AnalyticsVisible {
		t.Fatal("expected analytics visible")
	}
	if out := m.View(); !strings.Contains(out, "completed 1 of 1") {
		t.Fatalf("expected analytics summary in view:\n%s", out)
	}

	m = press(t, m, "?")
	if !m.HelpVisible || m.AnalyticsVisible {
		t.Fatalf("expected help to replace analytics: help=%v analytics=%v", m.HelpVisible, m.AnalyticsVisible)
	}
	if out := m.View(); !strings.Contains(out, "help:") {
		t.Fatalf("expected help panel in view:\n%s", out)
	}
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}
