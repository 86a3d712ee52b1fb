// Package cache provides the disk-backed JSON stores used for keyword
// sets, translations, and search results.  Stores are safe for
// concurrent use within one process; multi-process access is not
// coordinated.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/pkg/errors"
)

const storeVersion = 1

type envelope[V any] struct {
	Version   int          `json:"version"`
	UpdatedAt time.Time    `json:"updated_at"`
	Entries   map[string]V `json:"entries"`
}

// Store is a mutex-guarded JSON file holding a string-keyed entry map.
// The file is loaded lazily on first access; a corrupt or unreadable
// file logs a warning and starts empty rather than failing the caller.
// Every mutation rewrites the file atomically via temp file + rename.
type Store[V any] struct {
	mu      sync.Mutex
	path    string
	log     logging.Logger
	entries map[string]V
	loaded  bool
}

// NewStore creates a store persisted at path.  A nil logger is replaced
// by a no-op logger.
func NewStore[V any](path string, log logging.Logger) *Store[V] {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store[V]{path: path, log: log.Named("cache")}
}

// load must be called with the mutex held.
func (s *Store[V]) load() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.entries = make(map[string]V)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cache file unreadable, starting empty",
				logging.String("path", s.path), logging.Err(err))
		}
		return
	}

	var env envelope[V]
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warn("cache file corrupt, starting empty",
			logging.String("path", s.path), logging.Err(err))
		return
	}
	if env.Entries != nil {
		s.entries = env.Entries
	}
}

// save must be called with the mutex held.
func (s *Store[V]) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to create cache directory")
	}

	env := envelope[V]{
		Version:   storeVersion,
		UpdatedAt: time.Now().UTC(),
		Entries:   s.entries,
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode cache")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to create cache temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write cache temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to close cache temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to replace cache file")
	}
	return nil
}

// Get returns the entry stored under key.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	v, ok := s.entries[key]
	return v, ok
}

// Set stores the entry under key and persists the store.
func (s *Store[V]) Set(key string, value V) error {
	return s.Update(func(entries map[string]V) {
		entries[key] = value
	})
}

// Delete removes the entry under key and persists the store.  Deleting
// a missing key is a no-op without I/O.
func (s *Store[V]) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.save()
}

// Update applies fn to the entry map under the lock and persists the
// result.  fn may add, change, or remove entries.
func (s *Store[V]) Update(fn func(entries map[string]V)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	fn(s.entries)
	return s.save()
}

// View calls fn with a read-only view of the entry map under the lock.
// fn must not retain or mutate the map.
func (s *Store[V]) View(fn func(entries map[string]V)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	fn(s.entries)
}

// Len reports the number of stored entries.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return len(s.entries)
}
