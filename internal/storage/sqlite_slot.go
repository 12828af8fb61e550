package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteSlot struct {
	db   *sql.DB
	name string
	now  func() time.Time
}

func NewSQLiteSlot(db *sql.DB, name string) (*SQLiteSlot, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("storage: slot name is required")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return &SQLiteSlot{db: db, name: name, now: time.Now}, nil
}

// OpenSQLite opens the database at path, applies migrations and returns the
// named slot inside it.
func OpenSQLite(path, name string) (*SQLiteSlot, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	slot, err := NewSQLiteSlot(db, name)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return slot, nil
}

func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

func (s *SQLiteSlot) Name() string {
	return s.name
}

func (s *SQLiteSlot) Read(ctx context.Context) ([]byte, error) {
	return s.readKey(ctx, s.name)
}

func (s *SQLiteSlot) Write(ctx context.Context, payload []byte) error {
	return s.writeKey(ctx, s.name, payload)
}

func (s *SQLiteSlot) Quarantine(ctx context.Context, raw []byte) (string, error) {
	key := fmt.Sprintf("%s.corrupt-%d", s.name, s.now().Unix())
	if err := s.writeKey(ctx, key, raw); err != nil {
		return "", err
	}
	return "sqlite slot " + key, nil
}

// Names lists every slot stored in the database, quarantined ones included.
func (s *SQLiteSlot) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM slots ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var name string
		if scanErr := rows.Scan(&name); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *SQLiteSlot) readKey(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE name = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (s *SQLiteSlot) writeKey(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, s.now().UTC().Format(timeLayout),
	)
	return err
}
