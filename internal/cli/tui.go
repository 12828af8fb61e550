package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/app"
	"github.com/sandeepkv93/taskmaster/internal/scheduler"
	"github.com/sandeepkv93/taskmaster/internal/update"
)

func runTUI(ctx context.Context, a *app.App) error {
	engine := scheduler.NewEngine(a.Config.SchedulerBuffer)
	engine.Start()
	defer func() {
		engine.Stop()
		if dropped := engine.Dropped(); dropped > 0 {
			a.Logger.Warn("due events dropped", "count", dropped)
		}
	}()

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if a.Config.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}

	m := update.NewModel(a.Store,
		update.WithContext(ctx),
		update.WithConfig(a.Config),
		update.WithScheduler(engine),
		update.WithNotifier(notifier),
		update.WithLogger(a.Logger.WithPrefix("tui")),
		update.WithStartupError(a.LoadErr),
	)
	a.Logger.Info("tui starting", "tasks", a.Store.Len())
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
