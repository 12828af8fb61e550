package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/scheduler"
	"github.com/sandeepkv93/taskmaster/internal/view"
)

func waitForDueCmd(ch <-chan scheduler.DueEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DueEventMsg{Event: ev}
	}
}

func (m *Model) handleDueEvent(ev scheduler.DueEvent) tea.Cmd {
	switch ev.Kind {
	case scheduler.KindRollover:
		m.syncSelection()
		m.replan()
		counts := view.Count(m.tasks(), m.now())
		m.Status = StatusBar{Text: fmt.Sprintf("new day: %d due today, %d overdue", counts.DueToday, counts.Overdue)}
		m.logger.Info("day rollover", "due_today", counts.DueToday, "overdue", counts.Overdue)
		return nil
	case scheduler.KindDue:
		task, ok := m.store.Get(ev.TaskID)
		if !ok || task.Completed {
			return nil
		}
		m.syncSelection()
		m.logger.Info("task due", "id", task.ID)
		if !m.DueAlerts {
			return nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("due now: %s", task.Text)}
		return m.notify("Task due", task.Text, "warn")
	default:
		return nil
	}
}

// notify appends to the notification ring, mirrors to the desktop when
// enabled and returns the command that dismisses it after the TTL.
func (m *Model) notify(title, body, level string) tea.Cmd {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	m.nextNote++
	n := Notification{
		ID:    m.nextNote,
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		if err := m.notifier.Send(n); err != nil {
			m.logger.Debug("desktop notification failed", "err", err)
		}
	}
	if m.NotificationTTL <= 0 {
		return nil
	}
	id := n.ID
	return tea.Tick(m.NotificationTTL, func(time.Time) tea.Msg {
		return DismissNotificationMsg{ID: id}
	})
}

func (m *Model) dismissNotification(id int) {
	kept := make([]Notification, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	m.Notifications = kept
}
