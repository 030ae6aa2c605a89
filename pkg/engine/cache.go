package engine

import (
	"sync"
	"sync/atomic"

	"github.com/yourusername/azulengine/internal/tilecode"
)

// Cache constants
const (
	DefaultCacheSize = 1 << 18
	CacheHit         = ^uint32(0)
)

// CacheEntry stores a cached evaluation result.
type CacheEntry struct {
	Key     tilecode.PositionKey
	Context int32 // player index and evaluation mode packed by MakeEvalContext
	Value   float64
	valid   bool
}

// EvalCache is a thread-safe evaluation cache using a two-way associative
// layout with MurmurHash3-style indexing.
type EvalCache struct {
	entries  []cacheNode
	size     uint32
	hashMask uint32

	// Counters are atomic so concurrent readers under RLock never race.
	lookups atomic.Uint64
	hits    atomic.Uint64
	adds    atomic.Uint64

	mu sync.RWMutex
}

// cacheNode holds primary and secondary entries for the two-way layout.
type cacheNode struct {
	primary   CacheEntry
	secondary CacheEntry
}

// NewEvalCache creates an evaluation cache with the given size, rounded up
// to a power of two.
func NewEvalCache(size uint32) *EvalCache {
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 1<<30 {
		size = 1 << 30
	}
	p := uint32(1)
	for p < size {
		p <<= 1
	}
	size = p

	return &EvalCache{
		entries:  make([]cacheNode, size/2),
		size:     size,
		hashMask: (size / 2) - 1,
	}
}

// Flush clears all entries from the cache.
func (c *EvalCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		c.entries[i] = cacheNode{}
	}
	c.lookups.Store(0)
	c.hits.Store(0)
	c.adds.Store(0)
}

// hash computes the slot index for a key using MurmurHash3-style mixing.
func (c *EvalCache) hash(key tilecode.PositionKey, context int32) uint32 {
	const c1 = 0xcc9e2d51
	const c2 = 0x1b873593

	h := uint32(0)
	for _, k := range key.Data {
		k *= c1
		k = (k << 15) | (k >> 17)
		k *= c2

		h ^= k
		h = (h << 13) | (h >> 19)
		h = h*5 + 0xe6546b64
	}

	k := uint32(context)
	k *= c1
	k = (k << 15) | (k >> 17)
	k *= c2
	h ^= k

	h ^= 32
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h & c.hashMask
}

// Lookup checks for a cached value. Returns (value, CacheHit) on a hit,
// otherwise the slot to pass to Add.
func (c *EvalCache) Lookup(key tilecode.PositionKey, context int32) (float64, uint32) {
	slot := c.hash(key, context)

	c.mu.RLock()
	defer c.mu.RUnlock()

	c.lookups.Add(1)
	node := &c.entries[slot]

	if node.primary.valid && tilecode.EqualKeys(node.primary.Key, key) &&
		node.primary.Context == context {
		c.hits.Add(1)
		return node.primary.Value, CacheHit
	}
	if node.secondary.valid && tilecode.EqualKeys(node.secondary.Key, key) &&
		node.secondary.Context == context {
		c.hits.Add(1)
		return node.secondary.Value, CacheHit
	}

	return 0, slot
}

// Add stores an evaluation at the slot returned by a previous Lookup miss.
// The previous primary entry is demoted to the secondary way.
func (c *EvalCache) Add(key tilecode.PositionKey, context int32, value float64, slot uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &c.entries[slot]
	node.secondary = node.primary
	node.primary = CacheEntry{Key: key, Context: context, Value: value, valid: true}
	c.adds.Add(1)
}

// Stats returns cache statistics.
func (c *EvalCache) Stats() (lookups, hits, adds uint64) {
	return c.lookups.Load(), c.hits.Load(), c.adds.Load()
}

// HitRate returns the cache hit rate as a percentage.
func (c *EvalCache) HitRate() float64 {
	lookups := c.lookups.Load()
	if lookups == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(lookups) * 100
}

// MakeEvalContext packs the evaluation parameters that distinguish
// otherwise-identical positions into a cache context key.
func MakeEvalContext(player int, differential bool) int32 {
	ctx := int32(player & 0x7)
	if differential {
		ctx |= 1 << 3
	}
	return ctx
}
