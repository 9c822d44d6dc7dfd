// Package lock serializes analytics writes per user.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAcquired is returned when a lock could not be taken before ctx ended
var ErrNotAcquired = errors.New("lock not acquired")

// Locker takes an exclusive lock on key. The returned release func must be
// called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process Locker keyed by string
type Local struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

// NewLocal creates an in-process Locker
func NewLocal() *Local {
	return &Local{locks: make(map[string]*localEntry)}
}

// Lock blocks until key is free or ctx is done
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.unref(key, e)
		})
	}, nil
}

func (l *Local) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// UserKey is the lock key for a user's analytics recompute
func UserKey(userID string) string {
	return "analytics:" + userID
}
