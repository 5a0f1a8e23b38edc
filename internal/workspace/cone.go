package workspace

// Cone is a root entity plus every existing entity transitively reachable
// from it via reference edges.
//
// INVARIANT: the cone is closed. Every member present in the snapshot has all
// of its existing references in the cone as well.
type Cone struct {
	Root    EntityID
	Members *IDSet
}

// Contains reports whether id is a member of the cone.
func (c *Cone) Contains(id EntityID) bool {
	if c == nil {
		return false
	}
	return c.Members.Contains(id)
}

// BuildCone computes the cone rooted at root.
//
// The traversal uses an explicit worklist rather than recursion so deep or wide
// reference graphs cannot exhaust the goroutine stack. Each id is visited at
// most once, which bounds the work by the number of edges and guarantees
// termination on cycles.
//
// Dangling references (ids absent from the snapshot) are dropped, not
// expanded, and never reported as errors. If root itself is absent the cone
// is empty.
func BuildCone(root EntityID, snap *Snapshot) *Cone {
	visited := map[EntityID]struct{}{root: {}}
	members := make([]EntityID, 0, 8)
	stack := []EntityID{root}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entity, ok := snap.Entity(id)
		if !ok {
			// Dangling: nothing to include, nothing to expand.
			continue
		}
		members = append(members, id)

		for _, ref := range entity.References() {
			if _, seen := visited[ref]; seen {
				continue
			}
			visited[ref] = struct{}{}
			stack = append(stack, ref)
		}
	}

	return &Cone{Root: root, Members: NewIDSet(members...)}
}
