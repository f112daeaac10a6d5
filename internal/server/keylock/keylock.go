// Package keylock provides a table of mutexes addressed by string key.
//
// Callers locking the same key are serialised; callers on different keys
// never contend beyond a short map lookup. Entries are created on first use
// and dropped as soon as nobody holds or waits on them.
package keylock

import (
	"context"
	"sync"
)

type entry struct {
	// ch holds one token while the key is locked.
	ch   chan struct{}
	refs int
}

type Table struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func New() *Table {
	return &Table{locks: make(map[string]*entry)}
}

// Lock blocks until key is acquired or ctx is done. The returned unlock
// func is safe to call more than once.
func (t *Table) Lock(ctx context.Context, key string) (func(), error) {
	t.mu.Lock()
	e, ok := t.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		t.locks[key] = e
	}
	e.refs++
	t.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		t.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			t.release(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or waited on.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}

func (t *Table) release(key string, e *entry) {
	t.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(t.locks, key)
	}
	t.mu.Unlock()
}
