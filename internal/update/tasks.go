package update

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/commands"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/scheduler"
	"github.com/sandeepkv93/taskmaster/internal/store"
	"github.com/sandeepkv93/taskmaster/internal/view"
)

// parseAddInput splits "text | due". The due part is optional.
func parseAddInput(raw string, now time.Time) (string, *time.Time, error) {
	text, dueRaw, hasDue := strings.Cut(raw, "|")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil, fmt.Errorf("%w: task text is required", model.ErrValidation)
	}
	if !hasDue || strings.TrimSpace(dueRaw) == "" {
		return text, nil, nil
	}
	due, err := commands.ParseDue(dueRaw, now)
	if err != nil {
		return "", nil, err
	}
	return text, &due, nil
}

func (m Model) tasks() []model.Task {
	if m.store == nil {
		return nil
	}
	return m.store.Tasks()
}

func (m Model) visible() []model.Task {
	return view.Derive(m.tasks(), view.Options{Category: m.Category, Sort: m.Sort, Now: m.now()})
}

func (m *Model) setCategory(c view.Category) {
	m.Category = c
	m.Cursor = 0
	m.SelectedTaskID = ""
	m.syncSelection()
}

// syncSelection keeps the cursor on the selected task when it is still
// visible, otherwise clamps the cursor and selects whatever sits under it.
func (m *Model) syncSelection() {
	visible := m.visible()
	if len(visible) == 0 {
		m.Cursor = 0
		m.SelectedTaskID = ""
		return
	}
	for i, t := range visible {
		if t.ID == m.SelectedTaskID {
			m.Cursor = i
			return
		}
	}
	m.Cursor = clamp(m.Cursor, 0, len(visible)-1)
	m.SelectedTaskID = visible[m.Cursor].ID
}

func (m *Model) moveCursor(delta int) {
	visible := m.visible()
	if len(visible) == 0 {
		return
	}
	m.Cursor = clamp(m.Cursor+delta, 0, len(visible)-1)
	m.SelectedTaskID = visible[m.Cursor].ID
}

// target resolves an explicit id (or prefix) and falls back to the selection.
func (m Model) target(ref string) (model.Task, error) {
	if m.store == nil {
		return model.Task{}, fmt.Errorf("%w: no task store", model.ErrInvalidArgument)
	}
	if strings.TrimSpace(ref) == "" {
		if m.SelectedTaskID == "" {
			return model.Task{}, fmt.Errorf("%w: no task selected", model.ErrInvalidArgument)
		}
		ref = m.SelectedTaskID
	}
	return m.store.Resolve(ref)
}

func (m *Model) addTask(text string, due *time.Time) tea.Cmd {
	task, err := m.store.Add(m.ctx, text, due)
	if err == nil || errors.Is(err, store.ErrPersistence) {
		m.SelectedTaskID = task.ID
	}
	return m.afterMutation("Task added", task.Text, err)
}

func (m *Model) toggleTask(ref string) tea.Cmd {
	t, err := m.target(ref)
	if err != nil {
		return m.fail(err)
	}
	toggled, _, err := m.store.Toggle(m.ctx, t.ID)
	title := "Task reopened"
	if toggled.Completed {
		title = "Task completed"
	}
	return m.afterMutation(title, t.Text, err)
}

func (m *Model) deleteTask(ref string) tea.Cmd {
	t, err := m.target(ref)
	if err != nil {
		return m.fail(err)
	}
	_, err = m.store.Delete(m.ctx, t.ID)
	if m.SelectedTaskID == t.ID {
		m.SelectedTaskID = ""
	}
	return m.afterMutation("Task deleted", t.Text, err)
}

func (m *Model) setPriority(ref string, p model.Priority) tea.Cmd {
	t, err := m.target(ref)
	if err != nil {
		return m.fail(err)
	}
	_, err = m.store.ChangePriority(m.ctx, t.ID, p)
	return m.afterMutation("Priority "+string(p), t.Text, err)
}

func (m *Model) cyclePriority() tea.Cmd {
	t, err := m.target("")
	if err != nil {
		return m.fail(err)
	}
	return m.setPriority(t.ID, t.Priority.Next())
}

// moveSelected swaps the selection with its visible neighbour. Only the
// manual sort shows the stored order, so other sorts refuse.
func (m *Model) moveSelected(delta int) tea.Cmd {
	if m.Sort != view.SortManual {
		return m.fail(fmt.Errorf("%w: reordering needs the manual sort (press s)", model.ErrInvalidArgument))
	}
	t, err := m.target("")
	if err != nil {
		return m.fail(err)
	}
	order, ok := view.Move(view.IDs(m.tasks()), view.IDs(m.visible()), t.ID, delta)
	if !ok {
		return nil
	}
	return m.afterMutation("Tasks reordered", t.Text, m.store.Reorder(m.ctx, order))
}

func (m *Model) clearCompleted() tea.Cmd {
	removed, err := m.store.ClearCompleted(m.ctx)
	return m.afterMutation("Cleared completed", fmt.Sprintf("%d task(s) removed", removed), err)
}

// afterMutation refreshes selection and the due plan, then reports. A
// persistence failure keeps the in-memory change and is shown as an error.
func (m *Model) afterMutation(title, body string, err error) tea.Cmd {
	m.syncSelection()
	m.replan()
	if err != nil {
		return m.fail(err)
	}
	m.LastError = nil
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", strings.ToLower(title), body)}
	return m.notify(title, body, "info")
}

func (m *Model) fail(err error) tea.Cmd {
	m.LastError = err
	text := err.Error()
	if errors.Is(err, store.ErrPersistence) {
		text = "not saved: " + text
	}
	m.logger.Warn("action failed", "err", err)
	m.Status = StatusBar{Text: text, IsError: true}
	return m.notify("Error", text, "error")
}

// replan hands the scheduler the events implied by the current collection.
func (m *Model) replan() {
	if m.scheduler == nil {
		return
	}
	if err := m.scheduler.Replace(scheduler.Plan(m.tasks(), m.now())); err != nil {
		m.logger.Warn("scheduler replan failed", "err", err)
	}
}
