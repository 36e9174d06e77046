// Package refcache is a fixed-TTL memoization cache for small reference
// collections (teams, users, projects, initiatives, labels, workflow
// states) so repeated name→ID resolution within a session does not hit
// the network every time.
//
// There is no eviction beyond TTL expiry and explicit Clear, and no
// in-flight deduplication: two callers racing on the same missing key
// may both invoke the fetcher. That is acceptable because fetchers are
// idempotent reads of a handful of rows.
package refcache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long an entry stays fresh when the caller passes no
// explicit TTL.
const DefaultTTL = 5 * time.Minute

type entry struct {
	payload   any
	expiresAt time.Time
}

// Cache is a TTL keyed store. Keys are logical resource names ("teams",
// "users", ...). One Cache is private to one session and is never
// shared across identities.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	// now is a field to allow clock injection in tests.
	now func() time.Time
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached value for key if it has not expired;
// otherwise it invokes fetch, stores the result for ttl (DefaultTTL when
// ttl <= 0), and returns it. A fetch error is returned without caching.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	// Fetch outside the lock so a slow network call does not block
	// lookups for unrelated keys.
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{payload: v, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()

	return v, nil
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	// An expired entry is treated as absent and dropped eagerly.
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Clear removes the named entries, or every entry when called with no
// arguments. Used when the acting identity changes mid-session.
func (c *Cache) Clear(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.entries = make(map[string]entry)
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// Fetch is the typed wrapper around Cache.GetOrFetch. A cached payload
// of the wrong type is treated as a miss and refetched.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		c.Clear(key)
		return fetch(ctx)
	}
	return typed, nil
}
