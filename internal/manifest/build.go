package manifest

import (
	"fmt"
	"slices"

	"github.com/roach88/snapsum/internal/workspace"
)

// Build validates m and creates a fresh snapshot of it.
//
// The manifest's supported kinds and external references become snapshot
// options; opts are applied after them and may override either.
func Build(m *Manifest, opts ...workspace.Option) (*workspace.Snapshot, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}

	entities := make(map[workspace.EntityID]workspace.Entity, len(m.Projects))
	for _, spec := range m.Projects {
		p := NewProject(spec)
		entities[p.ID()] = p
	}

	var base []workspace.Option
	if len(m.SupportedKinds) > 0 {
		kinds := make([]workspace.Kind, len(m.SupportedKinds))
		for i, k := range m.SupportedKinds {
			kinds[i] = workspace.Kind(k)
		}
		base = append(base, workspace.WithSupportedKinds(workspace.Kinds(kinds...)))
	}
	if len(m.ExternalReferences) > 0 {
		base = append(base, workspace.WithAttributes(ExternalReferences(slices.Clone(m.ExternalReferences))))
	}

	snap, err := workspace.New(entities, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("build snapshot %q: %w", m.Name, err)
	}
	return snap, nil
}
