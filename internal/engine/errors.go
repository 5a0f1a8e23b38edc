package engine

import (
	"errors"
	"fmt"
)

// ErrInvariant matches every *InvariantError via errors.Is.
var ErrInvariant = errors.New("checksum invariant violated")

// ErrorCode categorizes invariant violations.
type ErrorCode string

const (
	// ErrCodeEntityChecksum indicates an entity owner failed to produce its checksum.
	ErrCodeEntityChecksum ErrorCode = "ENTITY_CHECKSUM_FAILED"

	// ErrCodeAttributeChecksum indicates the snapshot attribute source failed.
	ErrCodeAttributeChecksum ErrorCode = "ATTRIBUTE_CHECKSUM_FAILED"

	// ErrCodeTreeAssembly indicates the assembled tree was internally inconsistent.
	ErrCodeTreeAssembly ErrorCode = "TREE_ASSEMBLY_FAILED"
)

// InvariantError reports an unexpected failure while assembling a checksum
// tree. It is never a cancellation.
//
// Callers must not continue synchronizing with the affected snapshot; the
// only recovery is to retry with a fresh snapshot.
type InvariantError struct {
	// Code identifies the error category.
	Code ErrorCode

	// SnapshotID identifies the affected snapshot.
	SnapshotID string

	// Scope is the scope being assembled ("*" for the whole snapshot).
	Scope string

	// Entity names the failing entity (empty for attribute failures).
	Entity string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: entity %s (snapshot=%s, scope=%s): %v", e.Code, e.Entity, e.SnapshotID, e.Scope, e.Err)
	}
	return fmt.Sprintf("%s (snapshot=%s, scope=%s): %v", e.Code, e.SnapshotID, e.Scope, e.Err)
}

// Unwrap exposes both ErrInvariant and the underlying failure to errors.Is/As.
func (e *InvariantError) Unwrap() []error {
	return []error{ErrInvariant, e.Err}
}

// IsInvariantError returns true if err is (or wraps) an *InvariantError.
// Uses errors.As to handle wrapped errors.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// sourceError tags a fan-out failure with where it came from.
type sourceError struct {
	entity    string
	attribute bool
	err       error
}

func (e *sourceError) Error() string {
	if e.attribute {
		return fmt.Sprintf("attributes: %v", e.err)
	}
	return fmt.Sprintf("entity %s: %v", e.entity, e.err)
}

func (e *sourceError) Unwrap() error {
	return e.err
}
