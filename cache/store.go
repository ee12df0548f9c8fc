package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store is a durable fingerprint -> payload map backed by a single JSON file.
//
// The file is read on every Lookup and fully rewritten on every Put; nothing is
// buffered in memory between calls. An unreadable or corrupt file is treated as
// an empty store so that a damaged cache never blocks acquisition.
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// Open returns a Store for path. The file does not need to exist yet.
func Open(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: filepath.Clean(path), logger: logger}
}

// Path returns the backing file location
func (s *Store) Path() string { return s.path }

// Lookup returns the payload stored under key
func (s *Store) Lookup(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	payload, ok := entries[key]
	return payload, ok
}

// Put stores payload under key, replacing any previous entry, and writes the
// file before returning. payload must be valid UTF-8 to replay unchanged.
func (s *Store) Put(key, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[key] = payload
	return s.save(entries)
}

// Len returns the number of cached entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.load())
}

// Clear removes every entry by deleting the backing file
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func (s *Store) load() map[string]string {
	entries := map[string]string{}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache unreadable, treating as empty", zap.String("path", s.path), zap.Error(err))
		}
		return entries
	}
	if len(b) == 0 {
		return entries
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		s.logger.Warn("cache corrupt, treating as empty", zap.String("path", s.path), zap.Error(err))
		return map[string]string{}
	}
	return entries
}

// save writes to a temp file next to the target and renames it into place,
// so a crash mid-write leaves the previous file intact.
func (s *Store) save(entries map[string]string) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}
