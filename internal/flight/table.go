package flight

import (
	"context"
	"sync"
)

// Table maps keys to single-flight entries.
//
// The mutex guards only lookup-or-insert, so a slow computation for one key
// never blocks lookups of another. Entries are never evicted; a Table lives
// exactly as long as its owner.
//
// The zero value is ready to use.
type Table[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*Lazy[V]
}

// NewTable creates an empty table.
func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{entries: make(map[K]*Lazy[V])}
}

// Entry returns the entry for key, inserting a new one bound to fn if absent.
// Reports whether this call inserted it. When the entry already exists, fn is
// ignored.
func (t *Table[K, V]) Entry(key K, fn Func[V]) (*Lazy[V], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lazy, ok := t.entries[key]; ok {
		return lazy, false
	}
	if t.entries == nil {
		t.entries = make(map[K]*Lazy[V])
	}
	lazy := NewLazy(fn)
	t.entries[key] = lazy
	return lazy, true
}

// GetOrCompute returns the memoized value for key, computing it with fn if
// needed. See Lazy.Get for cancellation semantics.
func (t *Table[K, V]) GetOrCompute(ctx context.Context, key K, fn Func[V]) (V, error) {
	lazy, _ := t.Entry(key, fn)
	return lazy.Get(ctx)
}

// Peek returns the value for key only if it has already been computed.
// Never blocks on a computation and never starts one.
func (t *Table[K, V]) Peek(key K) (V, bool) {
	t.mu.Lock()
	lazy, ok := t.entries[key]
	t.mu.Unlock()

	if !ok {
		var zero V
		return zero, false
	}
	return lazy.Peek()
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
