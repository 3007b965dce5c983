package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jward/usegraph/internal/edge"
)

// SaveEdges inserts edges and registry entries within a single transaction.
// Rows whose key already exists are skipped, so saving the same snapshot
// twice is a no-op. Files are written first so every stored edge endpoint
// that has a known path is resolvable as soon as the transaction commits.
func (s *Store) SaveEdges(ctx context.Context, edges []edge.Edge, paths map[uint64]string) error {
	if len(edges) == 0 && len(paths) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save edges: begin: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertFilesTx(ctx, tx, paths); err != nil {
		return fmt.Errorf("save edges: %w", err)
	}
	if err := s.insertEdgesTx(ctx, tx, edges); err != nil {
		return fmt.Errorf("save edges: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save edges: commit: %w", err)
	}
	return nil
}

func (s *Store) insertFilesTx(ctx context.Context, tx *sql.Tx, paths map[uint64]string) error {
	if len(paths) == 0 {
		return nil
	}
	d := s.dialect
	stmt, err := tx.PrepareContext(ctx, d.bind(
		`INSERT INTO files (fingerprint, path) VALUES (`+d.num("?")+`, ?) ON CONFLICT DO NOTHING`))
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, fp := range sortedFingerprints(paths) {
		if _, err := stmt.ExecContext(ctx, u64(fp), paths[fp]); err != nil {
			return fmt.Errorf("file %s: %w", paths[fp], err)
		}
	}
	return nil
}

func (s *Store) insertEdgesTx(ctx context.Context, tx *sql.Tx, edges []edge.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	d := s.dialect
	stmt, err := tx.PrepareContext(ctx, d.bind(
		`INSERT INTO file_edges (id, from_file, to_file, kind) VALUES (`+
			d.num("?")+`, `+d.num("?")+`, `+d.num("?")+`, ?) ON CONFLICT DO NOTHING`))
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		if err := e.Verify(); err != nil {
			return err
		}
		row := e.Row()
		if _, err := stmt.ExecContext(ctx, row.ID, row.From, row.To, int64(row.Kind)); err != nil {
			return fmt.Errorf("edge %s: %w", row.ID, err)
		}
	}
	return nil
}
