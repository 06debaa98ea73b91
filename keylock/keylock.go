// Package keylock serializes work per key. Every handler that loads, mutates
// and saves a channel's session runs inside Locker.Do for that channel, so
// mutations on one channel apply one at a time in arrival order while other
// channels proceed in parallel.
package keylock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker hands out one FIFO slot per key. The zero value is ready to use.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry

	// OnWait, when set, receives the time each caller spent waiting.
	OnWait func(key string, d time.Duration)
}

// New returns a Locker reporting wait times to onWait (may be nil).
func New(onWait func(key string, d time.Duration)) *Locker {
	return &Locker{OnWait: onWait}
}

func (l *Locker) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries == nil {
		l.entries = make(map[string]*entry)
	}
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Do runs fn while holding key. Waiters are served in arrival order. If ctx
// ends before the slot is acquired, fn is not run and ctx's error is returned.
// Once fn starts it runs to completion: it gets a context that is not
// canceled with ctx. The slot is released even if fn panics.
func (l *Locker) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	e := l.ref(key)
	defer l.unref(key, e)

	start := time.Now()
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire lock %s: %w", key, err)
	}
	defer e.sem.Release(1)
	if l.OnWait != nil {
		l.OnWait(key, time.Since(start))
	}
	return fn(context.WithoutCancel(ctx))
}

// Len returns the number of keys currently held or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
