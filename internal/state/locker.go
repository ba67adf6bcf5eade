package state

import "sync"

// Locker hands out one mutex per guest. The table lock only guards map
// bookkeeping and is never held while waiting for a guest's mutex, so
// guests never block each other. Entries are dropped when unused.
type Locker struct {
	mu    sync.Mutex
	locks map[int64]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[int64]*keyLock)}
}

// Lock blocks until the caller owns userID and returns the release func.
func (l *Locker) Lock(userID int64) (unlock func()) {
	l.mu.Lock()
	kl, ok := l.locks[userID]
	if !ok {
		kl = &keyLock{}
		l.locks[userID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.mu.Unlock()

			l.mu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(l.locks, userID)
			}
			l.mu.Unlock()
		})
	}
}

func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
