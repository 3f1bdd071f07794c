package lock

import (
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestKeyed_MutualExclusionPerKey(t *testing.T) {
    k := NewKeyed()

    const goroutines = 32
    const iterations = 200

    counter := 0
    var wg sync.WaitGroup
    wg.Add(goroutines)
    for i := 0; i < goroutines; i++ {
        go func() {
            defer wg.Done()
            for j := 0; j < iterations; j++ {
                k.Lock(7)
                counter++
                k.Unlock(7)
            }
        }()
    }
    wg.Wait()

    // Lost updates here would mean two goroutines were inside the
    // critical section for the same key at once.
    require.Equal(t, goroutines*iterations, counter)
}

func TestKeyed_DistinctKeysDoNotContend(t *testing.T) {
    k := NewKeyed()

    k.Lock(1)
    defer k.Unlock(1)

    done := make(chan struct{})
    go func() {
        k.Lock(2)
        k.Unlock(2)
        close(done)
    }()

    select {
    case <-done:
    case <-time.After(2 * time.Second):
        t.Fatal("lock for a different key blocked behind key 1")
    }
}

func TestKeyed_EntryDroppedWhenIdle(t *testing.T) {
    k := NewKeyed()

    k.Lock(42)
    k.Unlock(42)

    k.mu.Lock()
    _, ok := k.entries[42]
    k.mu.Unlock()
    assert.False(t, ok, "idle key should be removed from the table")
}

func TestKeyed_UnlockUnheldPanics(t *testing.T) {
    k := NewKeyed()
    assert.Panics(t, func() { k.Unlock(9) })
}
