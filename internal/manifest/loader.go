package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/snapsum/internal/workspace"
)

// Loader reads manifests from disk. Concurrent loads of the same path share
// one read and parse.
//
// Thread-safety: all methods are safe for concurrent use.
type Loader struct {
	group  singleflight.Group
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger means slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads, parses and validates the manifest at path. The format is
// chosen by extension: .yaml, .yml or .cue.
//
// The returned manifest may be shared with concurrent callers and must not be
// modified.
func (l *Loader) Load(ctx context.Context, path string) (*Manifest, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}

	ch := l.group.DoChan(key, func() (any, error) {
		return l.load(path)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			l.logger.Debug("manifest load shared", "path", path)
		}
		return res.Val.(*Manifest), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LoadSnapshot loads the manifest at path and builds a fresh snapshot of it.
func (l *Loader) LoadSnapshot(ctx context.Context, path string, opts ...workspace.Option) (*workspace.Snapshot, *Manifest, error) {
	m, err := l.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	snap, err := Build(m, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, m, nil
}

func (l *Loader) load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m *Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		m, err = Parse(data)
	case ".cue":
		m, err = ParseCUE(path, data)
	default:
		return nil, &Error{Field: "path", Message: fmt.Sprintf("unsupported manifest extension %q (want .yaml, .yml or .cue)", ext)}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := Validate(m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Debug("manifest loaded",
		"path", path,
		"name", m.Name,
		"projects", len(m.Projects),
	)
	return m, nil
}
