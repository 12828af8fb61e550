package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileSlot keeps the slot in a single file, replaced atomically on write.
type FileSlot struct {
	path string
	now  func() time.Time
}

func NewFileSlot(path string) (*FileSlot, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("storage: slot path is required")
	}
	return &FileSlot{path: trimmed, now: time.Now}, nil
}

func (s *FileSlot) Path() string {
	return s.path
}

func (s *FileSlot) Read(ctx context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (s *FileSlot) Write(ctx context.Context, payload []byte) error {
	return writeAtomic(s.path, payload)
}

func (s *FileSlot) Quarantine(ctx context.Context, raw []byte) (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if err := writeAtomic(target, raw); err != nil {
		return "", err
	}
	return target, nil
}

func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
