package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// positionLocks serializes ledger updates per (owner, ticker) key. Two
// concurrent submissions for the same position would otherwise both read the
// same stale quantity/average and the second write would clobber the first.
// Locks are created on demand and kept for the lifetime of the service; the
// key space is bounded by the number of distinct positions seen.
type positionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPositionLocks() *positionLocks {
	return &positionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given key and returns its unlock function.
func (p *positionLocks) acquire(owner uuid.UUID, ticker string) func() {
	key := owner.String() + ":" + ticker

	p.mu.Lock()
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
