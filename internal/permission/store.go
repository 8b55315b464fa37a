// Package permission persists the notification permission state on disk.
package permission

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Daniel-42-z/webnotify/internal/webnotify"
)

// record is the on-disk layout.
type record struct {
	State     string    `toml:"state"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// Store keeps the permission state in a TOML file.
type Store struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewStore returns a store backed by path. The file is created on first Set.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the stored state. A missing file reads as default.
func (s *Store) Get() (webnotify.Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return webnotify.PermissionDefault, err
	}
	return webnotify.ParsePermission(rec.State)
}

// UpdatedAt returns when the state was last written, zero if never.
func (s *Store) UpdatedAt() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return time.Time{}, err
	}
	return rec.UpdatedAt, nil
}

// Set writes the state.
func (s *Store) Set(p webnotify.Permission) error {
	if _, err := webnotify.ParsePermission(string(p)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(record{State: string(p), UpdatedAt: s.now().UTC().Truncate(time.Second)})
	if err != nil {
		return fmt.Errorf("encoding permission: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create permission directory: %w", err)
	}

	// Write to a temp file and rename over the old one.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write permission file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write permission file: %w", err)
	}
	return nil
}

// Reset removes the stored state so the next read returns default.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to reset permission: %w", err)
	}
	return nil
}

func (s *Store) read() (record, error) {
	var rec record
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&rec); err != nil {
		return rec, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return rec, nil
}
