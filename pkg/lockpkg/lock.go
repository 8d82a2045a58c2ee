// Package lockpkg provides an in-process table of per-key mutual exclusion locks.
//
// Locks for different keys never contend with each other. An entry lives in the table only while
// somebody holds or waits for it, so the table does not grow with the number of keys ever seen.
package lockpkg

import (
	"context"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Table is a set of named locks. The zero value is not usable, use NewTable.
type Table struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewTable returns an empty lock table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// Lock blocks until the lock for key is acquired or ctx is done.
//
// On success it returns the function releasing the lock. Calling it more than once is a no-op.
func (t *Table) Lock(ctx context.Context, key string) (func(), error) {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		t.entries[key] = e
	}
	e.refs++
	t.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		t.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once

	unlock := func() {
		once.Do(func() {
			<-e.sem
			t.release(key, e)
		})
	}

	return unlock, nil
}

func (t *Table) release(key string, e *entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(t.entries, key)
	}
}

// Len returns the number of keys currently held or awaited.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}
