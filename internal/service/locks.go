package service

import (
	"context"
	"sync"

	"github.com/xiaot623/aazan/internal/domain"
)

// sessionLocks serializes turns per session. Entries are reference counted
// and removed once no goroutine holds or waits for them.
type sessionLocks struct {
	edit  sync.Mutex
	locks map[domain.ID]*sessionLock
}

type sessionLock struct {
	ch   chan struct{}
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[domain.ID]*sessionLock)}
}

// Lock blocks until the session's lock is held or ctx is done. The returned
// func releases the lock and must be called exactly once.
func (l *sessionLocks) Lock(ctx context.Context, id domain.ID) (func(), error) {
	l.edit.Lock()
	lk := l.locks[id]
	if lk == nil {
		lk = &sessionLock{ch: make(chan struct{}, 1)}
		l.locks[id] = lk
	}
	lk.refs++
	l.edit.Unlock()

	select {
	case lk.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-lk.ch
				l.release(id, lk)
			})
		}, nil
	case <-ctx.Done():
		l.release(id, lk)
		return nil, ctx.Err()
	}
}

func (l *sessionLocks) release(id domain.ID, lk *sessionLock) {
	l.edit.Lock()
	defer l.edit.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
}

// size is the number of sessions with a holder or waiter.
func (l *sessionLocks) size() int {
	l.edit.Lock()
	defer l.edit.Unlock()
	return len(l.locks)
}
