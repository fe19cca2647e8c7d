package tasks

import "sync"

// SourceLocks serializes imports of the same source. Imports of different
// sources still run in parallel.
type SourceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSourceLocks() *SourceLocks {
	return &SourceLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock blocks until no other import of name is running and returns the
// matching unlock.
func (l *SourceLocks) Lock(name string) func() {
	l.mu.Lock()
	lock, ok := l.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[name] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
