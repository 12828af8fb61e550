package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/commands"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/view"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case tea.KeyEnter:
		raw := m.commandInput.Value()
		m.closePalette()
		return m, m.executePaletteCommand(raw)
	case tea.KeyRunes, tea.KeySpace:
		runes := string(msg.Runes)
		if msg.Type == tea.KeySpace && runes == "" {
			runes = " "
		}
		m.commandInput.SetValue(m.commandInput.Value() + runes)
		m.commandInput.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m *Model) closePalette() {
	m.Mode = ModeNormal
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m *Model) executePaletteCommand(raw string) tea.Cmd {
	cmd, err := commands.Parse(raw)
	if err != nil {
		return m.fail(err)
	}

	var out tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			var due *time.Time
			if a.Due != "" {
				parsed, err := commands.ParseDue(a.Due, m.now())
				if err != nil {
					return commands.Result{}, err
				}
				due = &parsed
			}
			out = m.addTask(a.Text, due)
			return commands.Result{}, nil
		},
		Toggle: func(a commands.TargetArgs) (commands.Result, error) {
			out = m.toggleTask(a.Target)
			return commands.Result{}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			out = m.deleteTask(a.Target)
			return commands.Result{}, nil
		},
		Priority: func(a commands.PriorityArgs) (commands.Result, error) {
			p, err := model.ParsePriority(a.Level)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			out = m.setPriority(a.Target, p)
			return commands.Result{}, nil
		},
		Clear: func() (commands.Result, error) {
			out = m.clearCompleted()
			return commands.Result{}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			c, err := view.ParseCategory(a.Category)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			m.setCategory(c)
			return commands.Result{Message: fmt.Sprintf("showing %s", strings.ToLower(c.Label()))}, nil
		},
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			k, err := view.ParseSortKey(a.Key)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			m.Sort = k
			m.syncSelection()
			return commands.Result{Message: fmt.Sprintf("sorted by %s", k)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m.notify("Command failed", err.Error(), "error")
	}
	if res.Message != "" {
		m.Status = StatusBar{Text: res.Message}
	}
	return out
}
