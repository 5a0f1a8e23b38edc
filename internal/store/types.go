package store

import (
	"github.com/roach88/snapsum/internal/checksum"
)

// TreeRecord is one journaled checksum tree, without its children.
type TreeRecord struct {
	Seq        int64
	SnapshotID string
	Scope      checksum.Scope
	Root       checksum.Checksum
	Aggregate  checksum.Checksum
	Attributes checksum.Checksum
	ChildCount int
	Source     string
}

// ChildRecord is one child of a journaled tree, at its tree position.
type ChildRecord struct {
	Position int
	EntityID string
	Checksum checksum.Checksum
}
