package checksum

import (
	"encoding/binary"
	"slices"
)

// Collection is an ordered sequence of checksums plus their aggregate.
//
// The aggregate hashes the element count followed by the concatenation of the
// elements in their given order:
//
//	Aggregate = SHA256(DomainCollection + 0x00 + uint64be(len) + c[0] + c[1] + ...)
//
// Combining is order-sensitive by contract. Callers must supply elements in a
// deterministic order (see workspace.Orderer) for the aggregate to be
// reproducible.
type Collection struct {
	items     []Checksum
	aggregate Checksum
}

// NewCollection builds a Collection over items. The slice is copied.
func NewCollection(items []Checksum) Collection {
	copied := slices.Clone(items)

	buf := make([]byte, 8, 8+len(copied)*Size)
	binary.BigEndian.PutUint64(buf, uint64(len(copied)))
	for _, c := range copied {
		buf = append(buf, c[:]...)
	}

	return Collection{
		items:     copied,
		aggregate: Of(DomainCollection, buf),
	}
}

// Aggregate returns the order-sensitive checksum over all items.
func (c Collection) Aggregate() Checksum {
	if c.aggregate.IsZero() {
		// Zero-value Collection behaves like an empty one.
		return NewCollection(nil).aggregate
	}
	return c.aggregate
}

// Len returns the number of items.
func (c Collection) Len() int {
	return len(c.items)
}

// At returns the i'th item.
func (c Collection) At(i int) Checksum {
	return c.items[i]
}

// Items returns a copy of the items in order.
func (c Collection) Items() []Checksum {
	return slices.Clone(c.items)
}

// Contains reports whether sum is one of the items.
func (c Collection) Contains(sum Checksum) bool {
	return slices.Contains(c.items, sum)
}

// Equal reports whether both collections hold the same items in the same order.
func (c Collection) Equal(other Collection) bool {
	return c.Aggregate() == other.Aggregate()
}
