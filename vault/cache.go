package vault

import (
	"io/fs"
	"sync"
	"time"

	"github.com/amonks/recur/note"
)

// Cache holds parsed properties keyed by note path. An entry is reused while
// the file's modification time and size are unchanged.
type Cache struct {
	mu      sync.Mutex
	stat    func(name string) (fs.FileInfo, error)
	read    func(name string) (*note.Document, error)
	entries map[string]cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	snap    note.Snapshot
}

func newCache(stat func(string) (fs.FileInfo, error), read func(string) (*note.Document, error)) *Cache {
	return &Cache{stat: stat, read: read, entries: make(map[string]cacheEntry)}
}

// Metadata returns the properties of a note, reading it when the cached
// copy is stale.
func (c *Cache) Metadata(name string) (note.Snapshot, error) {
	info, err := c.stat(name)
	if err != nil {
		c.Invalidate(name)
		return note.Snapshot{}, err
	}

	c.mu.Lock()
	entry, ok := c.entries[name]
	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		c.hits++
		c.mu.Unlock()
		return entry.snap, nil
	}
	c.misses++
	c.mu.Unlock()

	doc, err := c.read(name)
	if err != nil {
		c.Invalidate(name)
		return note.Snapshot{}, err
	}
	snap := doc.Snapshot()

	c.mu.Lock()
	c.entries[name] = cacheEntry{modTime: info.ModTime(), size: info.Size(), snap: snap}
	c.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached entry for a note.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Stats returns the number of cache hits and misses so far.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
