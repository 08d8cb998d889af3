package utils

import "sync"

// LockTable hands out one mutex per live key. An entry exists only while
// some goroutine holds or waits on it; Unlock retires the entry, so the
// table is bounded by the number of in-flight keys, not keys ever seen.
type LockTable[K comparable] struct {
	locks sync.Map
}

func (t *LockTable[K]) Lock(key K) {
	for {
		v, _ := t.locks.LoadOrStore(key, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		if cur, ok := t.locks.Load(key); ok && cur == v {
			return
		}
		// entry was retired while we waited, take the fresh one
		mu.Unlock()
	}
}

func (t *LockTable[K]) Unlock(key K) {
	v, ok := t.locks.Load(key)
	if !ok {
		return
	}
	t.locks.Delete(key)
	v.(*sync.Mutex).Unlock()
}
