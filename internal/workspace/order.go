package workspace

import (
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultOrderCacheSize bounds the number of id sets whose order a Snapshot
// remembers. Scoped queries add one set per distinct cone root.
const DefaultOrderCacheSize = 256

// Orderer produces a stable total order over id sets.
//
// Results are memoized by the identity of the input *IDSet, never by its
// contents. Correctness does not depend on the cache: a miss (or an eviction)
// recomputes the same order.
//
// Thread-safety: safe for concurrent use.
type Orderer struct {
	cache  *lru.Cache[*IDSet, []EntityID]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewOrderer creates an Orderer remembering up to size sets.
// Non-positive sizes fall back to DefaultOrderCacheSize.
func NewOrderer(size int) *Orderer {
	if size <= 0 {
		size = DefaultOrderCacheSize
	}
	cache, err := lru.New[*IDSet, []EntityID](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Orderer{cache: cache}
}

// Order returns the members of set sorted ascending. The returned slice is a
// fresh copy the caller may keep or modify. A nil or empty set yields an empty
// slice.
func (o *Orderer) Order(set *IDSet) []EntityID {
	if set.Len() == 0 {
		return []EntityID{}
	}

	if ordered, ok := o.cache.Get(set); ok {
		o.hits.Add(1)
		return slices.Clone(ordered)
	}
	o.misses.Add(1)

	ordered := set.Sorted()
	o.cache.Add(set, ordered)
	return slices.Clone(ordered)
}

// Stats returns cache hit and miss counts.
// Used for testing and introspection.
func (o *Orderer) Stats() (hits, misses int64) {
	return o.hits.Load(), o.misses.Load()
}
