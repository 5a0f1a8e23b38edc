package manifest

import (
	"context"

	"github.com/roach88/snapsum/internal/checksum"
)

// ExternalReferences is the workspace-global attribute source: the set of
// external references every project may see. Order and duplicates do not
// affect the checksum.
type ExternalReferences []string

// Checksum implements workspace.AttributeSource.
func (r ExternalReferences) Checksum(ctx context.Context) (checksum.Checksum, error) {
	if err := ctx.Err(); err != nil {
		return checksum.Zero, err
	}
	return checksum.OfCanonical(checksum.DomainAttributes, sortedUnique(r))
}
