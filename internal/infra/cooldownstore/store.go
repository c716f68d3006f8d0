// Package cooldownstore provides a JSON file-based implementation of
// domain.CooldownStore.
package cooldownstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// storeData represents the JSON file structure. The file holds exactly one
// record; it is rewritten wholesale on every change.
type storeData struct {
	CooldownEnd string `json:"cooldown_end,omitempty"`
}

// Store implements domain.CooldownStore using a JSON file.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Load reads the stored cooldown end. A missing, empty, or corrupt file is
// treated as "no cooldown known" rather than an error: failing open here is
// safer than refusing to start.
func (s *Store) Load() (time.Time, error) {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return time.Time{}, err
	}
	defer s.releaseLock(lock)

	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("read cooldown file: %w", err)
	}
	if len(content) == 0 {
		return time.Time{}, nil
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		// Corrupt file: no cooldown known.
		return time.Time{}, nil
	}
	if data.CooldownEnd == "" {
		return time.Time{}, nil
	}

	end, err := time.Parse(time.RFC3339, data.CooldownEnd)
	if err != nil {
		return time.Time{}, nil
	}
	return end, nil
}

// Save overwrites the stored record. A zero end writes an empty record
// rather than deleting the file, matching the read side's tolerance.
func (s *Store) Save(end time.Time) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data := storeData{}
	if !end.IsZero() {
		data.CooldownEnd = end.Format(time.RFC3339)
	}
	return s.write(&data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cooldown data: %w", err)
	}

	// Write to temp file first, then rename for atomicity: a crash mid-write
	// must never leave a partially written record behind.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
