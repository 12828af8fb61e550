package storage

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrMalformed = errors.New("storage: malformed payload")
)

// Slot is a single named location holding the whole serialized collection.
// Read returns ErrNotFound when nothing was ever written.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
}

// Quarantiner is implemented by slots that can set unreadable bytes aside
// for manual inspection. It returns a human-readable location.
type Quarantiner interface {
	Quarantine(ctx context.Context, raw []byte) (string, error)
}

type MemorySlot struct {
	mu          sync.Mutex
	payload     []byte
	present     bool
	Quarantined [][]byte
	// ReadErr and WriteErr, when set, are returned by every Read or Write.
	ReadErr  error
	WriteErr error
	Writes   int
}

func NewMemorySlot(initial []byte) *MemorySlot {
	s := &MemorySlot{}
	if initial != nil {
		s.payload = append([]byte(nil), initial...)
		s.present = true
	}
	return s
}

func (s *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	if !s.present {
		return nil, ErrNotFound
	}
	return append([]byte(nil), s.payload...), nil
}

func (s *MemorySlot) Write(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.payload = append([]byte(nil), payload...)
	s.present = true
	s.Writes++
	return nil
}

func (s *MemorySlot) Quarantine(ctx context.Context, raw []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Quarantined = append(s.Quarantined, append([]byte(nil), raw...))
	return "memory", nil
}

// Bytes returns the last written payload.
func (s *MemorySlot) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.payload...)
}
