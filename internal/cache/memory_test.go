package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPutThenGetReturnsValue(t *testing.T) {
	store := NewMemory()
	store.Put("upcoming_reminders_user-1", []string{"a", "b"}, time.Minute)

	raw, ok := store.Get("upcoming_reminders_user-1")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, raw)
}

func TestGetAfterExpiryIsAMiss(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := NewMemory(WithNow(func() time.Time { return *clock }))

	store.Put("key", "value", 5*time.Minute)

	advanced := now.Add(5*time.Minute + time.Second)
	clock = &advanced

	_, ok := store.Get("key")
	require.False(t, ok)
	require.Equal(t, 0, store.Len(), "expired entry should be dropped on read")
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	store := NewMemory()
	store.Put("key", "old", time.Minute)
	store.Put("key", "new", time.Minute)

	raw, ok := store.Get("key")
	require.True(t, ok)
	require.Equal(t, "new", raw)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := NewMemory(WithNow(func() time.Time { return *clock }))

	store.Put("key", 42, 0)

	farFuture := now.Add(24 * 365 * time.Hour)
	clock = &farFuture

	_, ok := store.Get("key")
	require.True(t, ok)
}

func TestClearRemovesOnlyNamedKeys(t *testing.T) {
	store := NewMemory()
	store.Put("a", 1, time.Minute)
	store.Put("b", 2, time.Minute)

	store.Clear("a")

	_, ok := store.Get("a")
	require.False(t, ok)
	_, ok = store.Get("b")
	require.True(t, ok)
}

func TestClearAllEmptiesStore(t *testing.T) {
	store := NewMemory()
	store.Put("a", 1, time.Minute)
	store.Put("b", 2, time.Minute)

	store.ClearAll()
	require.Equal(t, 0, store.Len())
}

func TestGetTypedMismatchIsAMiss(t *testing.T) {
	store := NewMemory()
	store.Put("key", "a string", time.Minute)

	_, ok := GetTyped[int](store, "key")
	require.False(t, ok)

	value, ok := GetTyped[string](store, "key")
	require.True(t, ok)
	require.Equal(t, "a string", value)
}

func TestConcurrentAccessIsSafe(t *testing.T) {
	store := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Put("shared", n, time.Minute)
				store.Get("shared")
			}
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("shared")
	require.True(t, ok)
}
