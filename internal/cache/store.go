package cache

import "time"

// Store is the shared read-through cache used by the query services. It is a
// deliberate accelerator, not a source of truth: contents are in-memory only
// and lost on process restart.
type Store interface {
	// Put stores value under key with an absolute expiry of now + ttl,
	// overwriting any existing entry.
	Put(key string, value any, ttl time.Duration)
	// Get returns the stored value when present and not expired. An expired
	// entry is a miss, not an error.
	Get(key string) (any, bool)
	// Clear removes the supplied keys unconditionally.
	Clear(keys ...string)
	// ClearAll removes every entry.
	ClearAll()
}

// GetTyped retrieves a value from the store and asserts its concrete type.
// A type mismatch is treated as a miss.
func GetTyped[T any](s Store, key string) (T, bool) {
	var zero T
	raw, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return value, true
}
