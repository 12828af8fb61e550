package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/view"
)

func (m Model) Init() tea.Cmd {
	if m.scheduler != nil {
		return waitForDueCmd(m.scheduler.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch m.Mode {
		case ModeAdding:
			return m.handleAddKey(typed)
		case ModePalette:
			return m.handlePaletteKey(typed)
		}
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.helpModel.Width = typed.Width
		return m, nil
	case SwitchCategoryMsg:
		if typed.Category.IsValid() {
			m.setCategory(typed.Category)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, m.notify("Status", typed.Text, levelFromError(typed.IsError))
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case DueEventMsg:
		cmd := m.handleDueEvent(typed.Event)
		if m.scheduler != nil {
			return m, tea.Batch(cmd, waitForDueCmd(m.scheduler.C()))
		}
		return m, cmd
	case DismissNotificationMsg:
		m.dismissNotification(typed.ID)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.Keys.All):
		m.setCategory(view.CategoryAll)
	case key.Matches(msg, m.Keys.Active):
		m.setCategory(view.CategoryActive)
	case key.Matches(msg, m.Keys.Completed):
		m.setCategory(view.CategoryCompleted)
	case key.Matches(msg, m.Keys.DueToday):
		m.setCategory(view.CategoryDueToday)
	case key.Matches(msg, m.Keys.Overdue):
		m.setCategory(view.CategoryOverdue)
	case key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.Keys.Sort):
		m.Sort = m.Sort.Next()
		m.syncSelection()
		m.Status = StatusBar{Text: fmt.Sprintf("sorted by %s", m.Sort)}
	case key.Matches(msg, m.Keys.Add):
		m.Mode = ModeAdding
		m.addInput.SetValue("")
		m.addInput.Focus()
		m.Status = StatusBar{Text: "new task: text | due, enter to save, esc to cancel"}
	case key.Matches(msg, m.Keys.Toggle):
		return m, m.toggleTask("")
	case key.Matches(msg, m.Keys.Delete):
		return m, m.deleteTask("")
	case key.Matches(msg, m.Keys.Priority):
		return m, m.cyclePriority()
	case key.Matches(msg, m.Keys.MoveUp):
		return m, m.moveSelected(-1)
	case key.Matches(msg, m.Keys.MoveDown):
		return m, m.moveSelected(1)
	case key.Matches(msg, m.Keys.Clear):
		return m, m.clearCompleted()
	case key.Matches(msg, m.Keys.Analytics):
		m.AnalyticsVisible = !m.AnalyticsVisible
		if m.AnalyticsVisible {
			m.HelpVisible = false
		}
	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.AnalyticsVisible = false
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
	case key.Matches(msg, m.Keys.Palette):
		m.Mode = ModePalette
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.Mode = ModeNormal
		m.addInput.SetValue("")
		m.addInput.Blur()
		m.Status = StatusBar{Text: "add cancelled"}
		return m, nil
	case tea.KeyEnter:
		raw := m.addInput.Value()
		text, due, err := parseAddInput(raw, m.now())
		if err != nil {
			return m, m.fail(err)
		}
		m.Mode = ModeNormal
		m.addInput.SetValue("")
		m.addInput.Blur()
		return m, m.addTask(text, due)
	case tea.KeyRunes, tea.KeySpace:
		m.addInput.SetValue(m.addInput.Value() + string(msg.Runes))
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			m.addInput.SetValue(m.addInput.Value() + " ")
		}
		m.addInput.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}
