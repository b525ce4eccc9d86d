// Package counter provides durable sources of monotonically increasing
// counter values for short code allocation.
package counter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ErrCounterCorrupted is returned when the persisted counter state is
// unreadable or non-numeric. The counter must not be reset to 0 in that
// case: already-issued codes would collide with new ones. Operator
// intervention is required.
var ErrCounterCorrupted = errors.New("counter state corrupted")

// FileStore is a counter persisted in a flat file. The value returned by
// Next is durably incremented before the caller observes it, so no value is
// ever handed out twice, even across restarts.
type FileStore struct {
	mu    sync.Mutex
	path  string
	value uint64
}

// NewFileStore opens the counter file at path, creating state at 0 if the
// file doesn't exist. A file with non-numeric content yields
// ErrCounterCorrupted.
func NewFileStore(path string) (*FileStore, error) {
	const op = "counter.NewFileStore"

	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}

		return nil, fmt.Errorf("%s: failed to read counter file: %w", op, err)
	}

	value, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrCounterCorrupted, string(data))
	}

	s.value = value

	return s, nil
}

// Next returns the current counter value after durably persisting its
// increment. Calls are serialized: concurrent callers observe distinct,
// consecutive values with no gaps. If persisting fails, no value is
// returned and the counter is not advanced.
func (s *FileStore) Next(_ context.Context) (uint64, error) {
	const op = "counter.FileStore.Next"

	s.mu.Lock()
	defer s.mu.Unlock()

	value := s.value
	if err := s.persist(value + 1); err != nil {
		return 0, fmt.Errorf("%s: failed to persist counter: %w", op, err)
	}
	s.value = value + 1

	return value, nil
}

// persist writes the value to a temp file and renames it over the counter
// file, so a crash mid-write can't leave partial state behind.
func (s *FileStore) persist(value uint64) error {
	f, err := os.CreateTemp(filepath.Dir(s.path), ".counter-*")
	if err != nil {
		return err
	}

	if _, err := f.WriteString(strconv.FormatUint(value, 10)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	return os.Rename(f.Name(), s.path)
}

// MemoryStore is a non-durable counter for tests and the in-memory storage
// backend. It honors the same no-repeat, no-gap contract within a single
// process.
type MemoryStore struct {
	mu    sync.Mutex
	value uint64
}

// NewMemoryStore returns a MemoryStore starting at 0.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Next returns the current counter value and advances it.
func (s *MemoryStore) Next(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value := s.value
	s.value++

	return value, nil
}
