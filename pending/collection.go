// Package pending implements the generic keyed collection used to track
// in-flight connectors, in-flight channel nonces, and adopted channels
// before they are promoted into the host p2p instance's live set.
//
// Grounded on original_source/src/p2p.cpp's pend/unpend/pending(nonce) and
// store(channel)'s dedup-by-authority behavior, generalized with Go
// generics so the same type backs all three uses instead of three
// hand-duplicated maps.
package pending

import (
	"sync"

	"github.com/canitude/libaltcoin-network/codes"
)

// Collection is a concurrency-safe set of values keyed by K. It is used
// both as a simple set (pending connectors, pending nonces) and as a
// dedup-checked map (adopted channels keyed by authority).
//
// Stop-propagation is this type's defining responsibility: once Stop has
// run, every later Store/Pend fails (or no-ops) rather than silently
// admitting a new entry after the owning p2p instance considers itself
// torn down, matching p2p.cpp's guarantee that no channel can be stored
// once stop() has begun.
type Collection[K comparable, V any] struct {
	mu     sync.Mutex
	items  map[K]V
	closed bool
}

// New returns an empty collection.
func New[K comparable, V any]() *Collection[K, V] {
	return &Collection[K, V]{items: make(map[K]V)}
}

// Store inserts value under key, failing with ErrAddressInUse if the key
// is already present, or ErrServiceStopped if Stop has already run. This
// is the dedup-by-authority behavior p2p.cpp's store() relies on to
// reject a second channel from the same peer.
func (c *Collection[K, V]) Store(key K, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return codes.New(codes.ErrServiceStopped, "collection stopped")
	}
	if _, ok := c.items[key]; ok {
		return codes.New(codes.ErrAddressInUse, "duplicate key")
	}
	c.items[key] = value
	return nil
}

// Pend is the non-deduplicating counterpart of Store, used at call sites
// that track in-flight connectors or nonces rather than adopted values
// (naming matches the original's pend/unpend terminology): it overwrites
// any existing entry for key instead of failing. It reports whether value was
// actually recorded; it is false once Stop has run.
func (c *Collection[K, V]) Pend(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.items[key] = value
	return true
}

// Stop closes the collection: every subsequent Store or Pend fails (or
// no-ops) instead of admitting a new entry, and the current contents are
// returned so the caller can tear each one down exactly once. Stop is
// idempotent; only the call that actually closes the collection returns
// its contents, later calls return nil.
func (c *Collection[K, V]) Stop(ec codes.Code) map[K]V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	items := c.items
	c.items = make(map[K]V)
	return items
}

// Stopped reports whether Stop has already run.
func (c *Collection[K, V]) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Remove deletes key if present; removing an absent key is a no-op,
// matching the original's unpend/remove idempotence.
func (c *Collection[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Exists reports whether key is currently present, used for nonce-based
// self-connect detection.
func (c *Collection[K, V]) Exists(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Get returns the value stored under key, if any.
func (c *Collection[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

// Count returns the number of entries currently held.
func (c *Collection[K, V]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Each invokes fn for every current value. fn must not call back into the
// collection, since Each holds the lock for its duration.
func (c *Collection[K, V]) Each(fn func(K, V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.items {
		fn(k, v)
	}
}
