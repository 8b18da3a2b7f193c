// Package cache provides thread-safe, generic caches with built-in
// statistics.
//
// # Cache types
//
// Simple (no eviction, manual cleanup only):
//
//	c, _ := cache.NewSimple[*Session]()
//	c.Set("key", session)
//	session, ok := c.Get("key")
//
// TTL (background expiry, eviction callback on expire or explicit delete):
//
//	c, _ := cache.NewTTL[*Session](ctx, 30*time.Minute, 5*time.Minute,
//		cache.WithEvictionCallback[*Session](func(key string, s *Session) {
//			s.PersistToDB()
//		}),
//	)
//
// Noop (always misses, for a disabled-cache code path without branching
// at every call site):
//
//	c := cache.NewNoop[*Session]()
//
// # Observability
//
// Simple and TTL caches expose Stats(), an always-on *Statistics tracking
// hits, misses, sets, deletes, evictions, and derived values like
// HitRatio(). It requires no external dependency and works identically
// in tests. A Noop cache's Stats() returns nil.
//
// # Context and cleanup
//
// TTL caches run a background cleanup goroutine; pass a context that
// will be canceled when the cache should stop cleaning up. Close() also
// stops it and waits for the goroutine to exit, returning an error if it
// has not exited within five seconds. Simple and Noop caches
// have no background goroutine, so Close() is a no-op for them.
package cache
