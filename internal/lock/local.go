package redlock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LocalProvider is an in-process lock table keyed by string. Entries are
// reference counted and dropped once no holder or waiter remains.
type LocalProvider struct {
	mu      sync.Mutex
	entries map[string]*localEntry
}

type localEntry struct {
	slot chan struct{}
	refs int
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{entries: make(map[string]*localEntry)}
}

func (p *LocalProvider) NewMutex(key string) Mutex {
	return &localMutex{provider: p, key: key}
}

// Len returns the number of keys currently held or waited on.
func (p *LocalProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *LocalProvider) ref(key string) *localEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[key]
	if !ok {
		e = &localEntry{slot: make(chan struct{}, 1)}
		p.entries[key] = e
	}
	e.refs++
	return e
}

func (p *LocalProvider) unref(key string, e *localEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(p.entries, key)
	}
}

type localMutex struct {
	provider *LocalProvider
	key      string
	entry    *localEntry
}

// WaitLock blocks until the key is free. lockTimeout is ignored; a local lock
// lives until Unlock.
func (m *localMutex) WaitLock(ctx context.Context, _ time.Duration, waitTimeout time.Duration) error {
	if m.entry != nil {
		return fmt.Errorf("lock for key %s is already held", m.key)
	}
	e := m.provider.ref(m.key)

	timer := time.NewTimer(waitTimeout)
	defer timer.Stop()

	select {
	case e.slot <- struct{}{}:
		m.entry = e
		return nil
	case <-timer.C:
		m.provider.unref(m.key, e)
		return fmt.Errorf("failed to acquire lock for key %s within the wait timeout", m.key)
	case <-ctx.Done():
		m.provider.unref(m.key, e)
		return ctx.Err()
	}
}

func (m *localMutex) Unlock(_ context.Context) error {
	if m.entry == nil {
		return fmt.Errorf("unlock failed, you're not the lock holder for key %s", m.key)
	}
	e := m.entry
	m.entry = nil
	<-e.slot
	m.provider.unref(m.key, e)
	return nil
}
