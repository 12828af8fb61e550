package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DueLayout is how due dates are shown next to a task.
const DueLayout = "Jan 2, 2006 at 3:04 PM"

type TabData struct {
	Label  string
	Key    string
	Count  int
	Active bool
}

type TaskRowData struct {
	ID        string
	Text      string
	Completed bool
	Priority  string
	DueDate   *time.Time
	DueToday  bool
	Overdue   bool
}

type TaskListData struct {
	Category   string
	Sort       string
	Rows       []TaskRowData
	SelectedID string
	AddView    string
	Empty      string
}

type DayData struct {
	Label     string
	Created   int
	Completed int
}

type AnalyticsPanelData struct {
	Total        int
	Completed    int
	Active       int
	ProgressView string
	TableView    string
	Days         []DayData
	Peak         int
}

type HelpPanelData struct {
	Markdown string
	HelpView string
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	doneTextStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	selectedStyle    = lipgloss.NewStyle().Bold(true)
	highStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mediumStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func RenderTabs(tabs []TabData) string {
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		label := fmt.Sprintf("[%s] %s (%d)", tab.Key, tab.Label, tab.Count)
		if tab.Active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s | sort: %s\n", strings.ToLower(data.Category), data.Sort))
	if data.AddView != "" {
		b.WriteString(data.AddView + "\n")
	}
	if len(data.Rows) == 0 {
		empty := data.Empty
		if empty == "" {
			empty = "(no tasks)"
		}
		b.WriteString(mutedStyle.Render(empty))
		return b.String()
	}
	for _, row := range data.Rows {
		b.WriteString(RenderTaskRow(row, row.ID == data.SelectedID))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderTaskRow(row TaskRowData, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	check := "[ ]"
	text := row.Text
	if row.Completed {
		check = "[x]"
		text = doneTextStyle.Render(text)
	} else if selected {
		text = selectedStyle.Render(text)
	}

	parts := []string{cursor, check, priorityBadge(row.Priority), text}
	switch {
	case row.Overdue:
		parts = append(parts, errorStyle.Render("(Overdue)"))
	case row.DueToday:
		parts = append(parts, warnStyle.Render("(Due Today)"))
	}
	if row.DueDate != nil {
		parts = append(parts, mutedStyle.Render("due "+row.DueDate.Local().Format(DueLayout)))
	}
	return strings.Join(parts, " ")
}

func priorityBadge(p string) string {
	switch p {
	case "high":
		return highStyle.Render("!!!")
	case "low":
		return lowStyle.Render("!  ")
	default:
		return mediumStyle.Render("!! ")
	}
}

func RenderAnalyticsPanel(data AnalyticsPanelData) string {
	var b strings.Builder
	b.WriteString("analytics:\n")
	b.WriteString(fmt.Sprintf("completed %d of %d (%d active)\n", data.Completed, data.Total, data.Active))
	if data.ProgressView != "" {
		b.WriteString(data.ProgressView + "\n")
	}
	b.WriteString("\nlast 7 days (created / done):\n")
	if data.TableView != "" {
		b.WriteString(data.TableView + "\n")
	}
	peak := data.Peak
	if peak <= 0 {
		peak = 1
	}
	for _, day := range data.Days {
		b.WriteString(fmt.Sprintf("%s %s %d/%d\n", day.Label, bar(day.Created, peak, 16), day.Created, day.Completed))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func bar(value, peak, width int) string {
	filled := value * width / peak
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s", RenderMarkdown(data.Markdown), data.HelpView)
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", inputView)
}

func RenderNotification(level string, title string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	line := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(level), title, body)
	if level == "error" {
		return errorStyle.Render(line)
	}
	return line
}
