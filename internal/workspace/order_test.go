package workspace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderer_Deterministic(t *testing.T) {
	o := NewOrderer(4)
	a := NewIDSet("c", "a", "b")
	b := NewIDSet("b", "c", "a")

	assert.Equal(t, []EntityID{"a", "b", "c"}, o.Order(a))
	assert.Equal(t, o.Order(a), o.Order(b), "equal sets must order identically")
}

func TestOrderer_MemoizesByIdentity(t *testing.T) {
	o := NewOrderer(4)
	set := NewIDSet("b", "a")

	o.Order(set)
	o.Order(set)
	hits, misses := o.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	// Equal contents, different identity: recomputed, same answer.
	assert.Equal(t, []EntityID{"a", "b"}, o.Order(NewIDSet("a", "b")))
	_, misses = o.Stats()
	assert.Equal(t, int64(2), misses)
}

func TestOrderer_EvictionRecomputes(t *testing.T) {
	o := NewOrderer(1)
	first := NewIDSet("z", "y")
	second := NewIDSet("x")

	assert.Equal(t, []EntityID{"y", "z"}, o.Order(first))
	o.Order(second) // evicts first
	assert.Equal(t, []EntityID{"y", "z"}, o.Order(first), "a cache miss recomputes the same order")
}

func TestOrderer_ReturnsCopies(t *testing.T) {
	o := NewOrderer(0)
	set := NewIDSet("b", "a")

	got := o.Order(set)
	got[0] = "mutated"
	assert.Equal(t, []EntityID{"a", "b"}, o.Order(set))
}

func TestOrderer_Empty(t *testing.T) {
	o := NewOrderer(2)
	assert.Equal(t, []EntityID{}, o.Order(nil))
	assert.Equal(t, []EntityID{}, o.Order(NewIDSet()))
}

func TestOrderer_Concurrent(t *testing.T) {
	o := NewOrderer(8)
	set := NewIDSet("d", "c", "b", "a")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, []EntityID{"a", "b", "c", "d"}, o.Order(set))
		}()
	}
	wg.Wait()
}
