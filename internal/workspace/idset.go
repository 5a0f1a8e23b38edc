package workspace

import (
	"iter"
	"maps"
	"slices"
)

// IDSet is an immutable set of entity ids.
//
// A *IDSet doubles as an identity key: the Orderer memoizes by pointer, so two
// equal sets built separately are ordered independently (with identical
// results).
type IDSet struct {
	members map[EntityID]struct{}
}

// NewIDSet builds a set from ids. Duplicates collapse.
func NewIDSet(ids ...EntityID) *IDSet {
	members := make(map[EntityID]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}
	return &IDSet{members: members}
}

// Contains reports membership. A nil set is empty.
func (s *IDSet) Contains(id EntityID) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[id]
	return ok
}

// Len returns the number of members. A nil set is empty.
func (s *IDSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// All iterates members in unspecified order.
func (s *IDSet) All() iter.Seq[EntityID] {
	if s == nil {
		return func(func(EntityID) bool) {}
	}
	return maps.Keys(s.members)
}

// Sorted returns the members in deterministic order. Uncached; prefer
// Orderer.Order on hot paths.
func (s *IDSet) Sorted() []EntityID {
	return SortIDs(slices.Collect(s.All()))
}

// SortIDs returns a sorted copy of ids.
func SortIDs(ids []EntityID) []EntityID {
	out := slices.Clone(ids)
	slices.Sort(out)
	if out == nil {
		out = []EntityID{}
	}
	return out
}
