package service

import "sync"

// sectionLocks serialises writers per section. Entries are reference counted
// and removed once no goroutine holds or waits for them.
type sectionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sectionLock
}

type sectionLock struct {
	mu   sync.Mutex
	refs int
}

func newSectionLocks() *sectionLocks {
	return &sectionLocks{locks: make(map[int64]*sectionLock)}
}

// Lock blocks until the section is free and returns the matching unlock.
func (l *sectionLocks) Lock(sectionID int64) func() {
	l.mu.Lock()
	lk, ok := l.locks[sectionID]
	if !ok {
		lk = &sectionLock{}
		l.locks[sectionID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()

	return func() {
		lk.mu.Unlock()

		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, sectionID)
		}
		l.mu.Unlock()
	}
}

func (l *sectionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
