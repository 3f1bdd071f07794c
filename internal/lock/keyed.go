// Package lock provides mutual exclusion scoped by an arbitrary key.
// The pairing engine uses it to serialize pairing attempts for one
// event without making unrelated events contend with each other.
package lock

import "sync"

// entry is a single keyed mutex together with the number of
// goroutines currently holding or waiting for it.  The refcount lets
// the table drop entries for idle keys so the map does not grow with
// every event ever seen.
type entry struct {
    mu   sync.Mutex
    refs int
}

// Keyed is a table of mutexes indexed by key.  The zero value is not
// usable; construct with NewKeyed.  Lock and Unlock pairs must be
// matched per key by the same goroutine, as with sync.Mutex.
type Keyed struct {
    mu      sync.Mutex
    entries map[uint64]*entry
}

// NewKeyed returns an empty keyed mutex table.
func NewKeyed() *Keyed {
    return &Keyed{entries: make(map[uint64]*entry)}
}

// Lock acquires the mutex for the given key, blocking while another
// goroutine holds it.  Locks for distinct keys never contend.
func (k *Keyed) Lock(key uint64) {
    k.mu.Lock()
    e, ok := k.entries[key]
    if !ok {
        e = &entry{}
        k.entries[key] = e
    }
    e.refs++
    k.mu.Unlock()
    e.mu.Lock()
}

// Unlock releases the mutex for the given key.  Unlocking a key that
// is not held panics, matching sync.Mutex semantics.
func (k *Keyed) Unlock(key uint64) {
    k.mu.Lock()
    e, ok := k.entries[key]
    if !ok {
        k.mu.Unlock()
        panic("lock: unlock of unheld key")
    }
    e.refs--
    if e.refs == 0 {
        delete(k.entries, key)
    }
    k.mu.Unlock()
    e.mu.Unlock()
}
