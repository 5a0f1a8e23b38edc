package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/snapsum/internal/checksum"
)

const treeColumns = `seq, snapshot_id, scoped, scope_root, root, aggregate, attributes, child_count, source`

// GetTree returns the journaled tree for (snapshotID, scope).
// The boolean is false when nothing was recorded.
func (s *Store) GetTree(ctx context.Context, snapshotID string, scope checksum.Scope) (TreeRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+treeColumns+`
		FROM trees
		WHERE snapshot_id = ? AND scoped = ? AND scope_root = ?
	`, snapshotID, boolToInt(scope.Scoped), scope.Root)

	rec, err := scanTree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TreeRecord{}, false, nil
	}
	if err != nil {
		return TreeRecord{}, false, err
	}
	return rec, true, nil
}

// ListTrees returns the most recent limit trees in ascending seq order.
// A non-positive limit returns every tree.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListTrees(ctx context.Context, limit int) ([]TreeRecord, error) {
	query := `
		SELECT ` + treeColumns + ` FROM (
			SELECT ` + treeColumns + `
			FROM trees
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`
	if limit <= 0 {
		limit = -1
	}
	return s.queryTrees(ctx, query, limit)
}

// FindByRoot returns every tree whose root checksum is root, ordered by seq.
func (s *Store) FindByRoot(ctx context.Context, root checksum.Checksum) ([]TreeRecord, error) {
	return s.queryTrees(ctx, `
		SELECT `+treeColumns+`
		FROM trees
		WHERE root = ?
		ORDER BY seq ASC
	`, root.String())
}

// ListBySource returns every tree recorded from source, ordered by seq.
func (s *Store) ListBySource(ctx context.Context, source string) ([]TreeRecord, error) {
	return s.queryTrees(ctx, `
		SELECT `+treeColumns+`
		FROM trees
		WHERE source = ?
		ORDER BY seq ASC
	`, source)
}

// Children returns the children of the tree recorded for (snapshotID, scope)
// in tree order. Returns an empty slice if the tree has no children or was
// never recorded.
func (s *Store) Children(ctx context.Context, snapshotID string, scope checksum.Scope) ([]ChildRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.position, c.entity_id, c.checksum
		FROM tree_children c
		JOIN trees t ON t.seq = c.tree_seq
		WHERE t.snapshot_id = ? AND t.scoped = ? AND t.scope_root = ?
		ORDER BY c.position ASC
	`, snapshotID, boolToInt(scope.Scoped), scope.Root)
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()

	children := []ChildRecord{}
	for rows.Next() {
		var (
			child ChildRecord
			sum   string
		)
		if err := rows.Scan(&child.Position, &child.EntityID, &sum); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		if child.Checksum, err = checksum.Parse(sum); err != nil {
			return nil, fmt.Errorf("scan child %s: %w", child.EntityID, err)
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children: %w", err)
	}
	return children, nil
}

func (s *Store) queryTrees(ctx context.Context, query string, args ...any) ([]TreeRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trees: %w", err)
	}
	defer rows.Close()

	trees := []TreeRecord{}
	for rows.Next() {
		rec, err := scanTree(rows)
		if err != nil {
			return nil, err
		}
		trees = append(trees, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trees: %w", err)
	}
	return trees, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTree(row scanner) (TreeRecord, error) {
	var (
		rec                    TreeRecord
		scoped                 int
		root, aggregate, attrs string
	)
	err := row.Scan(
		&rec.Seq,
		&rec.SnapshotID,
		&scoped,
		&rec.Scope.Root,
		&root,
		&aggregate,
		&attrs,
		&rec.ChildCount,
		&rec.Source,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TreeRecord{}, err
		}
		return TreeRecord{}, fmt.Errorf("scan tree: %w", err)
	}
	rec.Scope.Scoped = scoped == 1

	if rec.Root, err = checksum.Parse(root); err != nil {
		return TreeRecord{}, fmt.Errorf("scan tree %d root: %w", rec.Seq, err)
	}
	if rec.Aggregate, err = checksum.Parse(aggregate); err != nil {
		return TreeRecord{}, fmt.Errorf("scan tree %d aggregate: %w", rec.Seq, err)
	}
	if rec.Attributes, err = checksum.Parse(attrs); err != nil {
		return TreeRecord{}, fmt.Errorf("scan tree %d attributes: %w", rec.Seq, err)
	}
	return rec, nil
}
