package usecase

import (
	"context"
	"sync"
)

// userLocker serializes ledger mutations per user.
// Entries are reference counted and dropped once no caller holds or waits on them.
type userLocker struct {
	mu    sync.Mutex
	locks map[uint]*userLock
}

type userLock struct {
	sem  chan struct{}
	refs int
}

func newUserLocker() *userLocker {
	return &userLocker{locks: make(map[uint]*userLock)}
}

// Lock blocks until the lock for userID is held or ctx is done.
// The returned func releases the lock and must be called exactly once.
func (l *userLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{sem: make(chan struct{}, 1)}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	select {
	case ul.sem <- struct{}{}:
		return func() {
			<-ul.sem
			l.release(userID, ul)
		}, nil
	case <-ctx.Done():
		l.release(userID, ul)
		return nil, ctx.Err()
	}
}

func (l *userLocker) release(userID uint, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, userID)
	}
}

// size returns the number of tracked users.
func (l *userLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
