package mocks

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cradoe/nationalid/internal/file"
)

// MemoryStorage keeps saved files in memory. Delay slows every Save down
// like a remote upload would.
type MemoryStorage struct {
	mu      sync.Mutex
	Files   map[string][]byte
	Deleted []string
	Delay   time.Duration
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Files: map[string][]byte{}}
}

func (s *MemoryStorage) Driver() string {
	return file.DriverLocal
}

func (s *MemoryStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[name] = b

	return name, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Files, name)
	s.Deleted = append(s.Deleted, name)

	return nil
}
