package cache

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

const searchFileName = "search_results.json"

type searchEntry struct {
	Result   patent.SearchResult `json:"result"`
	CachedAt time.Time           `json:"cached_at"`
}

// SearchCache persists per-jurisdiction search results with a TTL.
// Expired entries are dropped lazily on access.
type SearchCache struct {
	store *Store[searchEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewSearchCache creates a search cache stored under dir.  A
// non-positive ttl disables expiry.
func NewSearchCache(dir string, ttl time.Duration, log logging.Logger) *SearchCache {
	return &SearchCache{
		store: NewStore[searchEntry](filepath.Join(dir, searchFileName), log),
		ttl:   ttl,
		now:   time.Now,
	}
}

// SearchKey builds the cache key for one provider search.
func SearchKey(provider patent.Provider, setID, jurisdiction, lang string, from, to time.Time) string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "open"
		}
		return t.Format("20060102")
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s-%s",
		provider, setID, jurisdiction, lang, format(from), format(to))
}

// Get returns the cached result for key when present and fresh.
// An expired entry is removed and reported as a miss.
func (c *SearchCache) Get(key string) (*patent.SearchResult, bool) {
	entry, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.CachedAt) > c.ttl {
		_ = c.store.Delete(key)
		return nil, false
	}
	result := entry.Result
	return &result, true
}

// Put stores a result under key.
func (c *SearchCache) Put(key string, result *patent.SearchResult) error {
	if result == nil {
		return nil
	}
	return c.store.Set(key, searchEntry{
		Result:   *result,
		CachedAt: c.now().UTC(),
	})
}

// Purge removes every expired entry.  Useful at startup so stale
// results never linger on disk across runs.
func (c *SearchCache) Purge() error {
	if c.ttl <= 0 {
		return nil
	}
	cutoff := c.now().Add(-c.ttl)
	return c.store.Update(func(entries map[string]searchEntry) {
		for key, entry := range entries {
			if entry.CachedAt.Before(cutoff) {
				delete(entries, key)
			}
		}
	})
}
