package settlement

import (
	"sync"

	"github.com/google/uuid"
)

// orderLocks serializes settlement attempts per order id. Entries are
// reference-counted so the map does not grow with order history.
type orderLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{entries: make(map[uuid.UUID]*lockEntry)}
}

// Lock blocks until the caller holds the per-order lock.
func (l *orderLocks) Lock(id uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the per-order lock and drops the entry when unused.
func (l *orderLocks) Unlock(id uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
