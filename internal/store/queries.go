package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jward/usegraph/internal/edge"
)

func (s *Store) edgeCols() string {
	d := s.dialect
	return d.col("id") + ", " + d.col("from_file") + ", " + d.col("to_file") + ", kind"
}

func scanEdge(scanner interface{ Scan(...any) error }) (edge.Edge, error) {
	var row edge.Row
	var kind int64
	if err := scanner.Scan(&row.ID, &row.From, &row.To, &kind); err != nil {
		return edge.Edge{}, err
	}
	if kind < 0 || kind > 255 {
		return edge.Edge{}, fmt.Errorf("edge %s: kind code %d out of range", row.ID, kind)
	}
	row.Kind = uint8(kind)
	return row.Edge()
}

func (s *Store) queryEdges(ctx context.Context, query string, args ...any) ([]edge.Edge, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.bind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []edge.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Text and numeric columns sort differently; order by value here.
	sortEdges(out)
	return out, nil
}

// Edges returns every stored edge, sorted by ID.
func (s *Store) Edges(ctx context.Context) ([]edge.Edge, error) {
	edges, err := s.queryEdges(ctx, `SELECT `+s.edgeCols()+` FROM file_edges`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	return edges, nil
}

// EdgesFrom returns the edges leaving the file with the given fingerprint.
func (s *Store) EdgesFrom(ctx context.Context, fingerprint uint64) ([]edge.Edge, error) {
	edges, err := s.queryEdges(ctx,
		`SELECT `+s.edgeCols()+` FROM file_edges WHERE from_file = `+s.dialect.num("?"), u64(fingerprint))
	if err != nil {
		return nil, fmt.Errorf("query edges from %d: %w", fingerprint, err)
	}
	return edges, nil
}

// EdgesTo returns the edges entering the file with the given fingerprint.
func (s *Store) EdgesTo(ctx context.Context, fingerprint uint64) ([]edge.Edge, error) {
	edges, err := s.queryEdges(ctx,
		`SELECT `+s.edgeCols()+` FROM file_edges WHERE to_file = `+s.dialect.num("?"), u64(fingerprint))
	if err != nil {
		return nil, fmt.Errorf("query edges to %d: %w", fingerprint, err)
	}
	return edges, nil
}

// Path looks up a fingerprint in the files registry. The bool is false when
// the fingerprint was never registered.
func (s *Store) Path(ctx context.Context, fingerprint uint64) (string, bool, error) {
	var path string
	err := s.db.QueryRowContext(ctx,
		s.dialect.bind(`SELECT path FROM files WHERE fingerprint = `+s.dialect.num("?")), u64(fingerprint)).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query path %d: %w", fingerprint, err)
	}
	return path, true, nil
}

// Files returns the files registry, sorted by path.
func (s *Store) Files(ctx context.Context) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.dialect.col("fingerprint")+`, path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()
	var out []File
	for rows.Next() {
		var fp string
		var f File
		if err := rows.Scan(&fp, &f.Path); err != nil {
			return nil, fmt.Errorf("query files: %w", err)
		}
		f.Fingerprint, err = strconv.ParseUint(fp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("query files: fingerprint: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
