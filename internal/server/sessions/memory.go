package sessions

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

var errEmptyHandle = errors.New("session handle is empty")

type item struct {
	binding *Binding
	// lastSeen is unix nanoseconds of the last Put or Get.
	lastSeen atomic.Int64
}

// MemoryStore keeps bindings in a sync.Map. With a positive idle TTL a
// binding not touched for longer than the TTL is treated as absent and
// removed by Sweep.
type MemoryStore struct {
	sessions sync.Map
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Get(ctx context.Context, handle string) (*Binding, error) {
	if handle == "" {
		return nil, common.ErrorNotFound
	}
	v, ok := m.sessions.Load(handle)
	if !ok {
		return nil, common.ErrorNotFound
	}
	it := v.(*item)
	now := m.now()
	if m.expired(it, now) {
		m.sessions.CompareAndDelete(handle, it)
		return nil, common.ErrorNotFound
	}
	it.lastSeen.Store(now.UnixNano())
	return it.binding, nil
}

func (m *MemoryStore) Put(ctx context.Context, handle string, b *Binding) error {
	if handle == "" {
		return errEmptyHandle
	}
	it := &item{binding: b}
	it.lastSeen.Store(m.now().UnixNano())
	m.sessions.Store(handle, it)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, handle string) (bool, error) {
	if handle == "" {
		return false, nil
	}
	v, ok := m.sessions.LoadAndDelete(handle)
	if !ok {
		return false, nil
	}
	return !m.expired(v.(*item), m.now()), nil
}

// Sweep removes expired bindings and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()
	count := 0
	m.sessions.Range(func(key, value any) bool {
		if m.expired(value.(*item), now) && m.sessions.CompareAndDelete(key, value) {
			count++
		}
		return true
	})
	return count
}

// Run sweeps every interval until ctx is done. It returns immediately when
// expiry is disabled.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Count returns the number of stored bindings, expired ones included until
// they are swept.
func (m *MemoryStore) Count() int {
	count := 0
	m.sessions.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (m *MemoryStore) expired(it *item, now time.Time) bool {
	if m.ttl <= 0 {
		return false
	}
	return now.Sub(time.Unix(0, it.lastSeen.Load())) > m.ttl
}
