package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snapsum/internal/store"
)

func TestWatch_RecomputesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ws.yaml")
	db := filepath.Join(dir, "journal.db")

	original, err := os.ReadFile("testdata/ws.yaml")
	require.NoError(t, err)
	changed, err := os.ReadFile("testdata/ws_util_changed.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, original, 0o644))

	roots := make(chan string, 16)
	opts := &WatchOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    db,
		Debounce:    10 * time.Millisecond,
		OnTree: func(_ string, root string) {
			roots <- root
		},
	}

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, opts, path, cmd)
	}()

	first := waitRoot(t, roots)
	require.NoError(t, os.WriteFile(path, changed, 0o644))
	second := waitRoot(t, roots)
	assert.NotEqual(t, first, second)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	trees, err := st.ListBySource(context.Background(), path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(trees), 2)
	assert.Equal(t, first, trees[0].Root.String())
	assert.Equal(t, second, trees[len(trees)-1].Root.String())
}

func TestWatch_InvalidDatabase(t *testing.T) {
	opts := &WatchOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    "/nonexistent/dir/journal.db",
	}
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := runWatch(context.Background(), opts, "testdata/ws.yaml", cmd)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func waitRoot(t *testing.T, roots <-chan string) string {
	t.Helper()
	select {
	case r := <-roots:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for checksum")
		return ""
	}
}
