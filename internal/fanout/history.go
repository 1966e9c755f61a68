package fanout

import (
	"sync"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// historyRing is a fixed-capacity FIFO of the most recently detected
// Sandwiches, oldest first. Mutated only by the hub's own goroutine;
// snapshot takes a read-locked copy for concurrent HTTP handlers.
type historyRing struct {
	mu    sync.RWMutex
	items []svmtypes.Sandwich
	cap   int
}

func newHistoryRing(capacity int) *historyRing {
	return &historyRing{items: make([]svmtypes.Sandwich, 0, capacity), cap: capacity}
}

func (r *historyRing) push(s svmtypes.Sandwich) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, s)
	if len(r.items) > r.cap {
		r.items = r.items[len(r.items)-r.cap:]
	}
}

// snapshot returns a copy of the ring, oldest first, safe to read
// concurrently with push.
func (r *historyRing) snapshot() []svmtypes.Sandwich {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]svmtypes.Sandwich, len(r.items))
	copy(out, r.items)
	return out
}
