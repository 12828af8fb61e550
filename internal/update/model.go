package update

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/config"
	"github.com/sandeepkv93/taskmaster/internal/scheduler"
	"github.com/sandeepkv93/taskmaster/internal/store"
	"github.com/sandeepkv93/taskmaster/internal/view"
)

const maxNotifications = 40

type Mode string

const (
	ModeNormal  Mode = "normal"
	ModeAdding  Mode = "adding"
	ModePalette Mode = "palette"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type Notification struct {
	ID    int
	Title string
	Body  string
	Level string
	At    time.Time
}

type KeyMap struct {
	All       key.Binding
	Active    key.Binding
	Completed key.Binding
	DueToday  key.Binding
	Overdue   key.Binding
	Up        key.Binding
	Down      key.Binding
	Sort      key.Binding
	Add       key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Priority  key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Clear     key.Binding
	Analytics key.Binding
	Palette   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		All:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		Active:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		Completed: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		DueToday:  key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "due today")),
		Overdue:   key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "overdue")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "toggle done")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Priority:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority")),
		MoveUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
		Analytics: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "analytics")),
		Palette:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Sort, k.Palette, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.All, k.Active, k.Completed, k.DueToday, k.Overdue},
		{k.Up, k.Down, k.MoveUp, k.MoveDown, k.Sort},
		{k.Add, k.Toggle, k.Delete, k.Priority, k.Clear},
		{k.Analytics, k.Palette, k.Help, k.Quit},
	}
}

type Model struct {
	Category         view.Category
	Sort             view.SortKey
	Mode             Mode
	SelectedTaskID   string
	Cursor           int
	HelpVisible      bool
	AnalyticsVisible bool
	Notifications    []Notification
	DesktopEnabled   bool
	DueAlerts        bool
	NotificationTTL  time.Duration
	Status           StatusBar
	Keys             KeyMap
	Quitting         bool
	LastError        error

	ctx       context.Context
	store     *store.Store
	scheduler *scheduler.Engine
	notifier  DesktopNotifier
	logger    *log.Logger
	now       func() time.Time
	nextNote  int

	addInput      textinput.Model
	commandInput  textinput.Model
	helpModel     help.Model
	completionBar progress.Model
	timelineTable table.Model
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SwitchCategoryMsg struct {
	Category view.Category
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type DueEventMsg struct {
	Event scheduler.DueEvent
}

type DismissNotificationMsg struct {
	ID int
}

type Option func(*Model)

func WithConfig(cfg config.Config) Option {
	return func(m *Model) {
		m.Category = cfg.DefaultView
		m.Sort = cfg.DefaultSort
		m.DesktopEnabled = cfg.DesktopNotifications
		m.DueAlerts = cfg.DueAlerts
		if cfg.NotificationTTL > 0 {
			m.NotificationTTL = cfg.NotificationTTL
		}
	}
}

func WithScheduler(engine *scheduler.Engine) Option {
	return func(m *Model) { m.scheduler = engine }
}

func WithNotifier(n DesktopNotifier) Option {
	return func(m *Model) {
		if n != nil {
			m.notifier = n
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithStartupError surfaces a load problem, such as a quarantined slot, in
// the status bar of the first frame.
func WithStartupError(err error) Option {
	return func(m *Model) {
		if err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		}
	}
}

func NewModel(st *store.Store, opts ...Option) Model {
	cfg := config.Default()
	m := Model{
		Category:        cfg.DefaultView,
		Sort:            cfg.DefaultSort,
		Mode:            ModeNormal,
		DueAlerts:       cfg.DueAlerts,
		NotificationTTL: cfg.NotificationTTL,
		Keys:            DefaultKeyMap(),
		ctx:             context.Background(),
		store:           st,
		notifier:        NoopDesktopNotifier{},
		logger:          log.New(io.Discard),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.initBubbleComponents()
	m.syncSelection()
	m.replan()
	return m
}

func (m *Model) initBubbleComponents() {
	m.addInput = textinput.New()
	m.addInput.Prompt = "add> "
	m.addInput.Placeholder = "task text | due (today, tomorrow, 2026-02-10 17:00)"
	m.addInput.CharLimit = 256
	m.addInput.Width = 54

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 54

	m.helpModel = help.New()
	m.helpModel.ShowAll = true

	m.completionBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	cols := []table.Column{
		{Title: "Day", Width: 6},
		{Title: "Created", Width: 8},
		{Title: "Done", Width: 6},
	}
	m.timelineTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(8))
}
