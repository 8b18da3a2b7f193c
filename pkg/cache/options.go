package cache

// Option configures cache behavior using the functional options pattern.
type Option[V any] func(*cacheOptions[V])

// cacheOptions holds internal configuration for cache instances. Stats
// are always collected; they are not optional.
type cacheOptions[V any] struct {
	evictCallback EvictCallback[V]
}

// WithEvictionCallback sets a callback invoked when an item is evicted
// from the cache, whether by TTL expiry or an explicit Delete/Clear.
func WithEvictionCallback[V any](callback EvictCallback[V]) Option[V] {
	return func(opts *cacheOptions[V]) {
		opts.evictCallback = callback
	}
}

func applyOptions[V any](options ...Option[V]) *cacheOptions[V] {
	opts := &cacheOptions[V]{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
