package session

import (
	"context"
	"sync"
)

// Locker serializes work on a key. Lock blocks until the key is free or ctx is done,
// and returns a function that releases the key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// KeyedMutex is an in-process Locker. Entries are reference counted
// and removed once no goroutine holds or waits for the key.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates an empty in-process locker.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

// Lock acquires key, honoring ctx cancellation while waiting.
func (km *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		km.locks[key] = l
	}
	l.refs++
	km.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		km.release(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			km.release(key, l)
		})
	}, nil
}

// Len returns the number of keys currently held or awaited.
func (km *KeyedMutex) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}

func (km *KeyedMutex) release(key string, l *keyLock) {
	km.mu.Lock()
	defer km.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(km.locks, key)
	}
}

func identityLockKey(id Identity) string {
	return "identity:" + id.Key()
}

func sessionLockKey(id string) string {
	return "session:" + id
}
