package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/snapsum/internal/checksum"
)

// RecordTree journals tree for snapshotID, tagging it with source (usually a
// manifest path).
//
// Uses ON CONFLICT DO NOTHING for idempotency - a tree already recorded for
// the same (snapshot, scope) is left untouched and RecordTree reports false.
// The tree row and its children are written in one transaction.
func (s *Store) RecordTree(ctx context.Context, snapshotID, source string, tree checksum.Tree) (bool, error) {
	if len(tree.ChildIDs) != tree.Children.Len() {
		return false, fmt.Errorf("record tree: %d ids for %d checksums", len(tree.ChildIDs), tree.Children.Len())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("record tree: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO trees
		(snapshot_id, scoped, scope_root, root, aggregate, attributes, child_count, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		snapshotID,
		boolToInt(tree.Scope.Scoped),
		tree.Scope.Root,
		tree.Root.String(),
		tree.Children.Aggregate().String(),
		tree.Attributes.String(),
		tree.Children.Len(),
		source,
	)
	if err != nil {
		return false, fmt.Errorf("record tree: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record tree: rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("record tree: last insert id: %w", err)
	}
	if err := insertChildren(ctx, tx, seq, tree); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("record tree: commit: %w", err)
	}
	return true, nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, seq int64, tree checksum.Tree) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tree_children (tree_seq, position, entity_id, checksum)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record tree: prepare children: %w", err)
	}
	defer stmt.Close()

	for i, id := range tree.ChildIDs {
		if _, err := stmt.ExecContext(ctx, seq, i, id, tree.Children.At(i).String()); err != nil {
			return fmt.Errorf("record tree: child %s: %w", id, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
