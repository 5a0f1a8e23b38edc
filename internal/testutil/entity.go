package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/snapsum/internal/checksum"
	"github.com/roach88/snapsum/internal/workspace"
)

// Entity is a configurable workspace.Entity for tests.
//
// Its checksum is derived from Content, so two entities with equal content
// hash equally. Calls counts how often the owner was asked.
//
// Thread-safety: Checksum is safe for concurrent use; configure fields before
// handing the entity to a snapshot.
type Entity struct {
	EntityKind workspace.Kind
	Refs       []workspace.EntityID
	Content    string

	// Delay is slept (respecting ctx) before answering.
	Delay time.Duration

	// Gate, when non-nil, blocks Checksum until closed or ctx is done.
	Gate <-chan struct{}

	// Err, when non-nil, is returned instead of a checksum.
	Err error

	// Panic, when non-nil, is panicked with instead of answering.
	Panic any

	// Started is closed on the first call, if non-nil.
	Started chan struct{}

	calls     atomic.Int32
	startOnce sync.Once
}

// Kind implements workspace.Entity.
func (e *Entity) Kind() workspace.Kind {
	return e.EntityKind
}

// References implements workspace.Entity.
func (e *Entity) References() []workspace.EntityID {
	return e.Refs
}

// Checksum implements workspace.Entity.
func (e *Entity) Checksum(ctx context.Context) (checksum.Checksum, error) {
	e.calls.Add(1)
	if e.Started != nil {
		e.startOnce.Do(func() { close(e.Started) })
	}

	if e.Delay > 0 {
		timer := time.NewTimer(e.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return checksum.Zero, ctx.Err()
		}
	}
	if e.Gate != nil {
		select {
		case <-e.Gate:
		case <-ctx.Done():
			return checksum.Zero, ctx.Err()
		}
	}
	if e.Panic != nil {
		panic(e.Panic)
	}
	if e.Err != nil {
		return checksum.Zero, e.Err
	}
	return ContentChecksum(e.Content), nil
}

// Calls returns how many times Checksum was invoked.
func (e *Entity) Calls() int {
	return int(e.calls.Load())
}

// ContentChecksum is the checksum Entity reports for content.
func ContentChecksum(content string) checksum.Checksum {
	return checksum.Of(checksum.DomainEntity, []byte(content))
}

// Attributes is a workspace.AttributeSource with a fixed payload.
type Attributes struct {
	Payload string
	Err     error
	Panic   any
	Gate    <-chan struct{}

	calls atomic.Int32
}

// Checksum implements workspace.AttributeSource.
func (a *Attributes) Checksum(ctx context.Context) (checksum.Checksum, error) {
	a.calls.Add(1)
	if a.Gate != nil {
		select {
		case <-a.Gate:
		case <-ctx.Done():
			return checksum.Zero, ctx.Err()
		}
	}
	if a.Panic != nil {
		panic(a.Panic)
	}
	if a.Err != nil {
		return checksum.Zero, a.Err
	}
	return checksum.Of(checksum.DomainAttributes, []byte(a.Payload)), nil
}

// Calls returns how many times Checksum was invoked.
func (a *Attributes) Calls() int {
	return int(a.calls.Load())
}
