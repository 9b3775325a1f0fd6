package session

import "sync"

// keyedLocks is a table of per-session mutexes. An entry lives only while
// someone holds or waits for it.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	sync.Mutex
	waiters int
}

// lock blocks until sessionID is free and returns the matching unlock.
func (k *keyedLocks) lock(sessionID string) (unlock func()) {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedEntry)
	}
	e := k.entries[sessionID]
	if e == nil {
		e = &keyedEntry{}
		k.entries[sessionID] = e
	}
	e.waiters++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		k.mu.Lock()
		if e.waiters--; e.waiters == 0 {
			delete(k.entries, sessionID)
		}
		k.mu.Unlock()
	}
}

func (k *keyedLocks) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
