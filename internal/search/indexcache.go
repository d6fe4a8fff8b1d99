package search

import (
	"sync"

	"github.com/hyperjump/aidex/internal/catalog"
	"github.com/hyperjump/aidex/internal/keyword"
)

// IndexCache keeps the fuzzy index of the most recent snapshot. The index is
// rebuilt only when a snapshot with a different identity is passed in.
type IndexCache struct {
	keys []string
	opts []keyword.FuzzyOption

	mu     sync.Mutex
	snap   *catalog.Snapshot
	idx    *keyword.FuzzyIndex
	builds int
}

// NewIndexCache returns a cache building indexes over keys (nil = keyword.DefaultKeys).
func NewIndexCache(keys []string, opts ...keyword.FuzzyOption) *IndexCache {
	return &IndexCache{keys: keys, opts: opts}
}

// For returns the index for snap, building it if snap is not the cached snapshot.
func (c *IndexCache) For(snap *catalog.Snapshot) *keyword.FuzzyIndex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx != nil && c.snap == snap {
		return c.idx
	}
	c.idx = keyword.BuildFuzzyIndex(snap.Tools(), c.keys, c.opts...)
	c.snap = snap
	c.builds++
	return c.idx
}

// Builds returns how many indexes have been built.
func (c *IndexCache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}
