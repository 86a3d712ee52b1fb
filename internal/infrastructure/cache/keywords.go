package cache

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/pkg/types/patent"
)

const keywordFileName = "keywords.json"

type keywordEntry struct {
	Set patent.KeywordSet `json:"set"`

	// Translations maps a target language code to the translated set.
	Translations map[string]patent.KeywordSet `json:"translations,omitempty"`

	SavedAt time.Time `json:"saved_at"`
}

// KeywordCache persists keyword sets by content-hash ID together with
// their per-language translations.  The cache keeps a bounded history;
// when the bound is exceeded the oldest sets are evicted.
type KeywordCache struct {
	store *Store[keywordEntry]
	limit int
	now   func() time.Time
}

// NewKeywordCache creates a keyword cache stored under dir.
func NewKeywordCache(dir string, historyLimit int, log logging.Logger) *KeywordCache {
	return &KeywordCache{
		store: NewStore[keywordEntry](filepath.Join(dir, keywordFileName), log),
		limit: historyLimit,
		now:   time.Now,
	}
}

// Get returns the stored set for the given content-hash ID.
func (c *KeywordCache) Get(id string) (patent.KeywordSet, bool) {
	entry, ok := c.store.Get(id)
	return entry.Set, ok
}

// Put stores the set under its content-hash ID, refreshing its position
// in the history, and returns the ID.
func (c *KeywordCache) Put(set patent.KeywordSet) (string, error) {
	id := set.ID()
	err := c.store.Update(func(entries map[string]keywordEntry) {
		entry, ok := entries[id]
		if !ok {
			entry = keywordEntry{Set: set}
		}
		entry.Set = set
		entry.SavedAt = c.now().UTC()
		entries[id] = entry
		c.evict(entries)
	})
	return id, err
}

// GetTranslation returns the cached translation of a set into lang.
func (c *KeywordCache) GetTranslation(id, lang string) (patent.KeywordSet, bool) {
	entry, ok := c.store.Get(id)
	if !ok {
		return patent.KeywordSet{}, false
	}
	set, ok := entry.Translations[lang]
	return set, ok
}

// PutTranslation stores a translated set under its source set's ID.  The
// source set must already be cached.
func (c *KeywordCache) PutTranslation(id, lang string, set patent.KeywordSet) error {
	return c.store.Update(func(entries map[string]keywordEntry) {
		entry, ok := entries[id]
		if !ok {
			return
		}
		if entry.Translations == nil {
			entry.Translations = make(map[string]patent.KeywordSet)
		}
		entry.Translations[lang] = set
		entries[id] = entry
	})
}

// History returns the stored set IDs, most recently saved first.
func (c *KeywordCache) History() []string {
	type stamped struct {
		id string
		at time.Time
	}
	var all []stamped
	c.store.View(func(entries map[string]keywordEntry) {
		for id, entry := range entries {
			all = append(all, stamped{id, entry.SavedAt})
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].at.After(all[j].at) })

	ids := make([]string, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.id)
	}
	return ids
}

// evict drops the oldest entries beyond the history limit.  Called with
// the store lock held via Update.
func (c *KeywordCache) evict(entries map[string]keywordEntry) {
	if c.limit < 1 || len(entries) <= c.limit {
		return
	}
	type stamped struct {
		id string
		at time.Time
	}
	all := make([]stamped, 0, len(entries))
	for id, entry := range entries {
		all = append(all, stamped{id, entry.SavedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	for _, s := range all[:len(entries)-c.limit] {
		delete(entries, s.id)
	}
}
