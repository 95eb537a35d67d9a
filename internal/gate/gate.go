// Package gate provides keyed mutual exclusion: at most one critical section
// per key runs at a time, distinct keys never wait on each other.
package gate

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// Key identifies the state a critical section owns.
type Key struct {
	ContestID    int64
	CompetitorID int64
}

type lock struct {
	sem chan struct{}
	// holders plus waiters; only touched inside Compute
	refs int
}

// Gate creates a lock per key on demand and drops it once nobody holds
// or waits for it, so memory stays proportional to in-flight keys.
type Gate struct {
	locks *xsync.MapOf[Key, *lock]
}

func New() *Gate {
	return &Gate{locks: xsync.NewMapOf[Key, *lock]()}
}

// WithLock runs fn while holding key's lock. Waiting for the lock stops when
// ctx is done; fn itself is not interrupted. The lock is released on every
// exit path of fn, panics included.
func (g *Gate) WithLock(ctx context.Context, key Key, fn func() error) error {
	l := g.retain(key)
	defer g.release(key)

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.sem }()

	return fn()
}

// Len reports how many keys currently have a lock.
func (g *Gate) Len() int {
	return g.locks.Size()
}

func (g *Gate) retain(key Key) *lock {
	l, _ := g.locks.Compute(key, func(old *lock, loaded bool) (*lock, bool) {
		if !loaded {
			old = &lock{sem: make(chan struct{}, 1)}
		}
		old.refs++
		return old, false
	})
	return l
}

func (g *Gate) release(key Key) {
	g.locks.Compute(key, func(old *lock, loaded bool) (*lock, bool) {
		if !loaded {
			return nil, true
		}
		old.refs--
		return old, old.refs == 0
	})
}
