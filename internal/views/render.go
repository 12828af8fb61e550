package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header       string
	Tabs         string
	MainPane     string
	SidePane     string
	StatusLine   string
	StatusError  bool
	Footer       string
	Notification string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func RenderApp(data AppData) string {
	main := panelStyle.Width(64).Render(data.MainPane)
	row := main
	if strings.TrimSpace(data.SidePane) != "" {
		side := panelStyle.Width(46).Render(data.SidePane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, main, side)
	}

	lines := []string{headerStyle.Render(data.Header)}
	if data.Tabs != "" {
		lines = append(lines, data.Tabs)
	}
	lines = append(lines, row)
	if data.StatusLine != "" {
		if data.StatusError {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Notification != "" {
		lines = append(lines, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
