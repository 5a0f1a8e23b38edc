package manifest

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/workspace"
)

// Project is a workspace.Entity backed by a ProjectSpec.
//
// Its checksum is computed at most once. Thread-safety: all methods are safe
// for concurrent use.
type Project struct {
	spec ProjectSpec
	refs []workspace.EntityID
	sum  func() (checksum.Checksum, error)
}

// NewProject wraps spec. The spec is copied; later changes to the caller's
// value are not observed.
func NewProject(spec ProjectSpec) *Project {
	p := &Project{spec: cloneSpec(spec)}
	p.refs = make([]workspace.EntityID, len(p.spec.References))
	for i, r := range p.spec.References {
		p.refs[i] = workspace.EntityID(r)
	}
	p.sum = sync.OnceValues(p.compute)
	return p
}

// ID returns the project id.
func (p *Project) ID() workspace.EntityID {
	return workspace.EntityID(p.spec.ID)
}

// Kind implements workspace.Entity.
func (p *Project) Kind() workspace.Kind {
	return workspace.Kind(p.spec.Kind)
}

// References implements workspace.Entity.
func (p *Project) References() []workspace.EntityID {
	return p.refs
}

// Documents returns the project's documents ordered by path.
func (p *Project) Documents() []Document {
	docs := slices.Clone(p.spec.Documents)
	slices.SortFunc(docs, func(a, b Document) int { return cmp.Compare(a.Path, b.Path) })
	return docs
}

// Checksum implements workspace.Entity.
func (p *Project) Checksum(ctx context.Context) (checksum.Checksum, error) {
	if err := ctx.Err(); err != nil {
		return checksum.Zero, err
	}
	return p.sum()
}

// DocumentChecksum returns the checksum of a single document.
func DocumentChecksum(doc Document) (checksum.Checksum, error) {
	return checksum.OfCanonical(checksum.DomainDocument, map[string]any{
		"path": doc.Path,
		"text": doc.Text,
	})
}

// compute builds the project's inner tree: documents ordered by path form a
// collection whose aggregate is combined with the identity checksum.
func (p *Project) compute() (checksum.Checksum, error) {
	identity, err := checksum.OfCanonical(checksum.DomainProject, map[string]any{
		"id":         p.spec.ID,
		"kind":       p.spec.Kind,
		"properties": propertiesOrEmpty(p.spec.Properties),
		"references": sortedUnique(p.spec.References),
	})
	if err != nil {
		return checksum.Zero, err
	}

	docs := p.Documents()
	sums := make([]checksum.Checksum, len(docs))
	for i, doc := range docs {
		if sums[i], err = DocumentChecksum(doc); err != nil {
			return checksum.Zero, err
		}
	}
	agg := checksum.NewCollection(sums).Aggregate()

	return checksum.OfParts(checksum.DomainEntity, identity.Bytes(), agg.Bytes()), nil
}

func cloneSpec(spec ProjectSpec) ProjectSpec {
	out := spec
	out.References = slices.Clone(spec.References)
	out.Documents = slices.Clone(spec.Documents)
	if spec.Properties != nil {
		out.Properties = make(map[string]string, len(spec.Properties))
		for k, v := range spec.Properties {
			out.Properties[k] = v
		}
	}
	return out
}

func propertiesOrEmpty(props map[string]string) map[string]string {
	if props == nil {
		return map[string]string{}
	}
	return props
}

// sortedUnique returns a sorted copy of s without duplicates (never nil).
func sortedUnique(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}
