package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/config"
	"github.com/sandeepkv93/taskmaster/internal/store"
)

func testConfig(t *testing.T, backend config.Backend) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = backend
	cfg.DataDir = t.TempDir()
	cfg.LogLevel = log.DebugLevel
	return cfg
}

func TestOpenFileBackendPersistsAcrossOpens(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	var logs bytes.Buffer

	a, err := Open(t.Context(), cfg, &logs)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := a.Store.Add(t.Context(), "Buy milk", nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(cfg.FilePath()); err != nil {
		t.Fatalf("expected slot file: %v", err)
	}

	b, err := Open(t.Context(), cfg, &logs)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if b.Store.Len() != 1 {
		t.Fatalf("expected 1 task after reopen, got %d", b.Store.Len())
	}
	if !strings.Contains(logs.String(), "app ready") {
		t.Fatalf("expected debug log line, got %q", logs.String())
	}
}

func TestOpenSQLiteBackend(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)
	a, err := Open(t.Context(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := a.Store.Add(t.Context(), "Write report", nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	a.Close()

	b, err := Open(t.Context(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if b.Store.Len() != 1 {
		t.Fatalf("expected 1 task in sqlite slot, got %d", b.Store.Len())
	}
}

func TestOpenCorruptFileKeepsRunning(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	if err := os.WriteFile(cfg.FilePath(), []byte("not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	a, err := Open(t.Context(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("open should tolerate corrupt data: %v", err)
	}
	defer a.Close()
	if !errors.Is(a.LoadErr, store.ErrCorruptState) || a.Store.Len() != 0 {
		t.Fatalf("expected corrupt load noted and empty store, got %v / %d", a.LoadErr, a.Store.Len())
	}
	matches, _ := filepath.Glob(cfg.FilePath() + ".corrupt-*")
	if len(matches) != 1 {
		t.Fatalf("expected one quarantine file, got %v", matches)
	}
}

func TestOpenFailsWhenSlotUnreadable(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	// A directory where the slot file should be makes every read fail.
	if err := os.MkdirAll(cfg.FilePath(), 0o755); err != nil {
		t.Fatalf("seed: %v", err)
	}

	a, err := Open(t.Context(), cfg, &bytes.Buffer{})
	if err == nil {
		a.Close()
		t.Fatal("expected open to fail on an unreadable slot")
	}
	if !errors.Is(err, store.ErrPersistence) || errors.Is(err, store.ErrCorruptState) {
		t.Fatalf("expected a persistence error, got %v", err)
	}
	matches, _ := filepath.Glob(cfg.FilePath() + ".corrupt-*")
	if len(matches) != 0 {
		t.Fatalf("unreadable slot must not be quarantined, got %v", matches)
	}
}

func TestOpenWritesLogFileWhenNoWriterGiven(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	a, err := Open(t.Context(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	raw, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "app ready") {
		t.Fatalf("unexpected log contents: %q", raw)
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, config.Backend("postgres"))
	if _, err := Open(t.Context(), cfg, &bytes.Buffer{}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
