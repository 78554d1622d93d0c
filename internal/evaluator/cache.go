package evaluator

import (
	"sync"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
)

type cacheEntry struct {
	result   ThunkResult
	hasValue bool
	version  uint64
}

// Cache is the per-request memoization table (spec §3/§5): one entry per
// node identity, each with a monotonically increasing version counter that
// Delete bumps. The evaluator's retry loop compares the version captured
// before an async handler ran against the version after, to detect that a
// dependency invalidated this node mid-evaluation (e.g. an iterator
// registered new runtime nodes that this node's ancestors depend on).
type Cache struct {
	mu      sync.Mutex
	entries map[ast.Identity]*cacheEntry
}

// NewCache creates an empty cache, fresh per request (spec §3,
// "lifecycles: cache and scope: fresh per evaluator instance").
func NewCache() *Cache {
	return &Cache{entries: make(map[ast.Identity]*cacheEntry)}
}

func (c *Cache) entry(id ast.Identity) *cacheEntry {
	e, ok := c.entries[id]
	if !ok {
		e = &cacheEntry{}
		c.entries[id] = e
	}
	return e
}

// Get returns the cached result for id, if one is present and not deleted.
func (c *Cache) Get(id ast.Identity) (ThunkResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || !e.hasValue {
		return ThunkResult{}, false
	}
	return e.result, true
}

// Version returns id's current version counter (0 if id has never been
// touched).
func (c *Cache) Version(id ast.Identity) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return 0
	}
	return e.version
}

// Set stores result for id without changing its version counter — a write
// following a successful evaluation is not an invalidation.
func (c *Cache) Set(id ast.Identity, result ThunkResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(id)
	e.result = result
	e.hasValue = true
}

// Delete clears id's cached value and increments its version counter. This
// is the only operation that bumps the version; the evaluator's retry loop
// relies on that to detect invalidation that happened while a handler was
// mid-flight.
func (c *Cache) Delete(id ast.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(id)
	e.hasValue = false
	e.result = ThunkResult{}
	e.version++
}
