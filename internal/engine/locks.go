package engine

import (
	"sync"
)

// opLocks serializes state-mutating operations per entity key. The database
// transaction gives atomicity; this gives the single-writer discipline the
// accounting invariants assume, including against reentrant calls triggered
// by outbound transfers.
type opLocks struct {
	m sync.Map // key -> *sync.Mutex
}

// lock acquires the mutex for key and returns its release func.
func (l *opLocks) lock(key string) func() {
	v, _ := l.m.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
