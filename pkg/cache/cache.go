// Package cache keeps fetched sheet tables for a bounded time, keyed by
// source id, optionally persisted between CLI runs.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harrisonrobin/tasksheet/pkg/config"
	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"github.com/harrisonrobin/tasksheet/pkg/source"
)

const cacheFile = "cache.json"

type Entry struct {
	SourceID  string        `json:"source_id"`
	Table     *source.Table `json:"table"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Cache maps source ids to the raw table last fetched from them. Entries
// expire TTL after FetchedAt; a TTL of zero or less disables hits.
type Cache struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`
	TTL     time.Duration    `json:"-"`
	mu      sync.RWMutex
	dirty   bool
}

// New returns an in-memory cache.
func New(ttl time.Duration) *Cache {
	return &Cache{Entries: make(map[string]Entry), TTL: ttl}
}

// Open returns a cache persisted under the config directory.
func Open(ttl time.Duration) (*Cache, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return OpenFile(filepath.Join(dir, cacheFile), ttl)
}

// OpenFile returns a cache persisted at path, loading it if it exists.
func OpenFile(path string, ttl time.Duration) (*Cache, error) {
	c := New(ttl)
	c.Path = path
	if _, err := os.Stat(path); err == nil {
		if err := c.Load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Cache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return errors.Wrap(err, "open cache")
	}
	defer f.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := json.NewDecoder(f).Decode(c); err != nil {
		return errors.WithHint(errors.Wrapf(err, "decode cache %s", c.Path), "delete the file to start over")
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	for id, e := range c.Entries {
		if e.Table == nil {
			delete(c.Entries, id)
			c.dirty = true
		}
	}
	return nil
}

// Save writes the cache to Path when it changed since the last load or
// save. In-memory caches never write.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty || c.Path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return errors.Wrap(err, "create cache directory")
	}
	f, err := os.OpenFile(c.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "create cache file")
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(c); err != nil {
		return errors.Wrap(err, "encode cache")
	}
	c.dirty = false
	return nil
}

// Get returns the table cached for id if it is still fresh at now.
func (c *Cache) Get(id string, now time.Time) (*source.Table, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.Entries[id]
	if !ok || e.Table == nil || !c.fresh(e, now) {
		return nil, time.Time{}, false
	}
	return e.Table, e.FetchedAt, true
}

func (c *Cache) Put(id string, t *source.Table, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries[id] = Entry{SourceID: id, Table: t, FetchedAt: fetchedAt}
	c.dirty = true
}

func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.Entries[id]; exists {
		delete(c.Entries, id)
		c.dirty = true
	}
}

// Sweep removes and returns the entries that have expired at now.
func (c *Cache) Sweep(now time.Time) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var swept []Entry
	for id, e := range c.Entries {
		if !c.fresh(e, now) {
			swept = append(swept, e)
			delete(c.Entries, id)
			c.dirty = true
		}
	}
	return swept
}

// Len is the number of entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Entries)
}

func (c *Cache) fresh(e Entry, now time.Time) bool {
	return c.TTL > 0 && now.Sub(e.FetchedAt) < c.TTL
}
