// Package app wires configuration, logging, the storage backend and the task
// store into one handle shared by the CLI and the TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/config"
	"github.com/sandeepkv93/taskmaster/internal/storage"
	"github.com/sandeepkv93/taskmaster/internal/store"
)

type App struct {
	Config config.Config
	Store  *store.Store
	Logger *log.Logger
	// LoadErr is set when the slot held unreadable data. The store is usable
	// and empty in that case.
	LoadErr error

	closers []func() error
}

func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "taskmaster",
		ReportTimestamp: true,
	})
}

// Open builds the App. Logs go to logOut when given, otherwise to the
// configured log file.
func Open(ctx context.Context, cfg config.Config, logOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg}

	if logOut == nil {
		f, err := openLogFile(cfg.LogPath())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f.Close)
		logOut = f
	}
	a.Logger = NewLogger(logOut, cfg.LogLevel)

	slot, err := a.openSlot()
	if err != nil {
		a.Close()
		return nil, err
	}

	st, err := store.Open(ctx, slot, store.WithLogger(a.Logger.WithPrefix("store")))
	switch {
	case err == nil:
	case errors.Is(err, store.ErrCorruptState):
		a.LoadErr = err
	default:
		a.Close()
		return nil, err
	}
	a.Store = st
	a.Logger.Debug("app ready", "backend", cfg.Backend, "slot", cfg.Slot, "tasks", st.Len())
	return a, nil
}

func (a *App) openSlot() (storage.Slot, error) {
	switch a.Config.Backend {
	case config.BackendMemory:
		return storage.NewMemorySlot(nil), nil
	case config.BackendSQLite:
		if err := os.MkdirAll(a.Config.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		slot, err := storage.OpenSQLite(a.Config.DatabasePath(), a.Config.Slot)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, slot.Close)
		return slot, nil
	default:
		return storage.NewFileSlot(a.Config.FilePath())
	}
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
