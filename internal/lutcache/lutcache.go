// Package lutcache owns deserialized address-lookup-table contents,
// keyed by the table's on-chain address. Entries are populated lazily
// from RPC by the decompiler and refreshed opportunistically from
// account-update notifications on the ingest stream.
package lutcache

import (
	"fmt"
	"sync"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// Cache is safe for concurrent use: readers run inside per-transaction
// decompile tasks, writers run both there (fetch-fill on miss) and on
// the ingest loop's account-update path.
type Cache struct {
	mu      sync.RWMutex
	entries map[svmtypes.Address][]svmtypes.Address
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[svmtypes.Address][]svmtypes.Address)}
}

// Contains reports whether key has a cached entry.
func (c *Cache) Contains(key svmtypes.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Get returns a snapshot of the addresses cached for key. The
// returned slice must not be mutated by the caller — InsertOrExtend
// always replaces rather than mutates the stored slice, so sharing it
// is safe as long as callers treat it as read-only.
func (c *Cache) Get(key svmtypes.Address) ([]svmtypes.Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	addrs, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("lutcache: no entry for %s", key)
	}
	return addrs, nil
}

// InsertOrExtend replaces the entry for key with addresses, unless the
// entry already holds a strictly longer sequence — a lookup table
// only grows in the logical timeline this system cares about, so a
// shorter update is always stale and is dropped. An update of equal
// length replaces the stored sequence.
func (c *Cache) InsertOrExtend(key svmtypes.Address, addresses []svmtypes.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok && len(existing) > len(addresses) {
		return
	}
	c.entries[key] = addresses
}

// Len returns the number of cached keys. Used by diagnostics only.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
