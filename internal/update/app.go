package update

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/sandeepkv93/taskmaster/internal/analytics"
	"github.com/sandeepkv93/taskmaster/internal/view"
	"github.com/sandeepkv93/taskmaster/internal/views"
)

func (m Model) View() string {
	now := m.now()
	all := m.tasks()
	counts := view.Count(all, now)

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	side := ""
	switch {
	case m.HelpVisible:
		side = m.renderHelpView()
	case m.AnalyticsVisible:
		side = m.renderAnalyticsView()
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("Task Master | %d active | %d need attention", counts.Active, counts.Overdue),
		Tabs:         m.renderTabs(counts),
		MainPane:     m.renderTaskList(),
		SidePane:     side,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer:       m.helpModel.ShortHelpView(m.Keys.ShortHelp()),
	})
}

func (m Model) renderTabs(counts view.Counts) string {
	tabs := make([]views.TabData, 0, len(view.Categories))
	for i, c := range view.Categories {
		tabs = append(tabs, views.TabData{
			Label:  c.Label(),
			Key:    strconv.Itoa(i + 1),
			Count:  counts.For(c),
			Active: c == m.Category,
		})
	}
	return views.RenderTabs(tabs)
}

func (m Model) renderTaskList() string {
	now := m.now()
	visible := m.visible()
	rows := make([]views.TaskRowData, 0, len(visible))
	for _, t := range visible {
		rows = append(rows, views.TaskRowData{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			Priority:  string(t.Priority),
			DueDate:   t.DueDate,
			DueToday:  view.IsDueToday(t, now),
			Overdue:   view.IsOverdue(t, now),
		})
	}

	input := ""
	switch m.Mode {
	case ModeAdding:
		input = m.addInput.View()
	case ModePalette:
		input = views.RenderCommandPalette(true, m.commandInput.View())
	}

	return views.RenderTaskList(views.TaskListData{
		Category:   m.Category.Label(),
		Sort:       string(m.Sort),
		Rows:       rows,
		SelectedID: m.SelectedTaskID,
		AddView:    input,
		Empty:      emptyMessage(m.Category),
	})
}

func emptyMessage(c view.Category) string {
	switch c {
	case view.CategoryCompleted:
		return "nothing completed yet"
	case view.CategoryDueToday:
		return "nothing due today"
	case view.CategoryOverdue:
		return "nothing overdue"
	default:
		return "no tasks yet, press a to add one"
	}
}

func (m Model) renderAnalyticsView() string {
	all := m.tasks()
	completion := analytics.CompletionOf(all)
	days := analytics.Timeline(all, m.now(), analytics.DefaultDays)

	rows := make([]table.Row, 0, len(days))
	data := make([]views.DayData, 0, len(days))
	for _, d := range days {
		rows = append(rows, table.Row{d.Label, strconv.Itoa(d.Created), strconv.Itoa(d.Completed)})
		data = append(data, views.DayData{Label: d.Label, Created: d.Created, Completed: d.Completed})
	}
	tbl := m.timelineTable
	tbl.SetRows(rows)

	return views.RenderAnalyticsPanel(views.AnalyticsPanelData{
		Total:        completion.Total,
		Completed:    completion.Completed,
		Active:       completion.Active,
		ProgressView: m.completionBar.ViewAs(completion.Rate()),
		TableView:    tbl.View(),
		Days:         data,
		Peak:         analytics.Peak(days),
	})
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Title, n.Body)
}
