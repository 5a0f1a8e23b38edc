package workspace

import (
	"fmt"

	"github.com/roach88/snapsum/internal/flight"
)

// Snapshot is an immutable workspace state at a point in time.
//
// INVARIANTS:
//   - the entity map is never mutated after New returns
//   - a Snapshot's checksum for a given scope, once computed, never changes
//   - caches (order, trees) belong to exactly one Snapshot and die with it
//
// Thread-safety: all methods are safe for concurrent use.
type Snapshot struct {
	id         string
	entities   map[EntityID]Entity
	all        *IDSet
	attributes AttributeSource
	supported  KindFilter

	orderer *Orderer
	trees   *flight.Table[ScopeKey, ScopedTree]
}

// Option configures a Snapshot.
type Option func(*snapshotConfig)

type snapshotConfig struct {
	id             string
	gen            IDGenerator
	attributes     AttributeSource
	supported      KindFilter
	orderCacheSize int
}

// WithID sets an explicit snapshot id instead of generating one.
func WithID(id string) Option {
	return func(c *snapshotConfig) {
		c.id = id
	}
}

// WithIDGenerator overrides the id generator (default: UUIDv7Generator).
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *snapshotConfig) {
		c.gen = gen
	}
}

// WithAttributes sets the source of snapshot-level attribute checksums.
// Default: NoAttributes.
func WithAttributes(src AttributeSource) Option {
	return func(c *snapshotConfig) {
		c.attributes = src
	}
}

// WithSupportedKinds sets which entity kinds participate in checksums.
// Default: AnyKind.
func WithSupportedKinds(filter KindFilter) Option {
	return func(c *snapshotConfig) {
		c.supported = filter
	}
}

// WithOrderCacheSize bounds the ordering cache (default: DefaultOrderCacheSize).
func WithOrderCacheSize(n int) Option {
	return func(c *snapshotConfig) {
		c.orderCacheSize = n
	}
}

// New creates a Snapshot over entities. The map is copied.
// Returns error if any entity is nil.
func New(entities map[EntityID]Entity, opts ...Option) (*Snapshot, error) {
	cfg := snapshotConfig{
		gen:        UUIDv7Generator{},
		attributes: NoAttributes{},
		supported:  AnyKind,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	copied := make(map[EntityID]Entity, len(entities))
	ids := make([]EntityID, 0, len(entities))
	for id, e := range entities {
		if e == nil {
			return nil, fmt.Errorf("snapshot: entity %q is nil", id)
		}
		copied[id] = e
		ids = append(ids, id)
	}

	id := cfg.id
	if id == "" {
		id = cfg.gen.Generate()
	}
	attrs := cfg.attributes
	if attrs == nil {
		attrs = NoAttributes{}
	}
	supported := cfg.supported
	if supported == nil {
		supported = AnyKind
	}

	return &Snapshot{
		id:         id,
		entities:   copied,
		all:        NewIDSet(ids...),
		attributes: attrs,
		supported:  supported,
		orderer:    NewOrderer(cfg.orderCacheSize),
		trees:      flight.NewTable[ScopeKey, ScopedTree](),
	}, nil
}

// ID returns the snapshot id.
func (s *Snapshot) ID() string {
	return s.id
}

// Entity looks up an entity by id.
func (s *Snapshot) Entity(id EntityID) (Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Len returns the number of entities, supported or not.
func (s *Snapshot) Len() int {
	return len(s.entities)
}

// AllIDs returns the set of every entity id. The same *IDSet is returned on
// every call, so ordering it hits the Orderer cache.
func (s *Snapshot) AllIDs() *IDSet {
	return s.all
}

// Attributes returns the snapshot-level attribute source.
func (s *Snapshot) Attributes() AttributeSource {
	return s.attributes
}

// IsSupported reports whether an entity of kind k participates in checksums.
func (s *Snapshot) IsSupported(k Kind) bool {
	return s.supported(k)
}

// Participates reports whether id exists and has a supported kind.
func (s *Snapshot) Participates(id EntityID) bool {
	e, ok := s.entities[id]
	return ok && s.supported(e.Kind())
}

// Orderer returns the snapshot's ordering service.
func (s *Snapshot) Orderer() *Orderer {
	return s.orderer
}

// Trees returns the snapshot's scoped checksum table.
func (s *Snapshot) Trees() *flight.Table[ScopeKey, ScopedTree] {
	return s.trees
}
