package flight

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_SameKeySharesEntry(t *testing.T) {
	tbl := NewTable[string, int]()

	first, created := tbl.Entry("a", func(ctx context.Context) (int, error) { return 1, nil })
	assert.True(t, created)

	second, created := tbl.Entry("a", func(ctx context.Context) (int, error) { return 2, nil })
	assert.False(t, created)
	assert.Same(t, first, second)

	v, err := tbl.GetOrCompute(context.Background(), "a", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "existing entry keeps its original computation")
}

func TestTable_ConcurrentInsertComputesOnce(t *testing.T) {
	var tbl Table[string, int]
	var calls atomic.Int32
	fn := func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := tbl.GetOrCompute(context.Background(), "k", fn)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_DistinctKeysIndependent(t *testing.T) {
	tbl := NewTable[string, string]()
	release := make(chan struct{})
	var calls atomic.Int32

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		_, _ = tbl.GetOrCompute(context.Background(), "slow", gatedFunc(&calls, release, "slow"))
	}()

	v, err := tbl.GetOrCompute(context.Background(), "fast", func(ctx context.Context) (string, error) {
		return "fast", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fast", v, "a slow key must not block another key")

	close(release)
	<-slowDone
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_Peek(t *testing.T) {
	tbl := NewTable[int, string]()

	_, ok := tbl.Peek(1)
	assert.False(t, ok)

	_, err := tbl.GetOrCompute(context.Background(), 1, func(ctx context.Context) (string, error) {
		return "one", nil
	})
	require.NoError(t, err)

	v, ok := tbl.Peek(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)
}
