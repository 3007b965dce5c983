package store

import (
	"context"

	"github.com/jward/usegraph/internal/edge"
)

// EdgeWriter is the persistence port the orchestrator hands its edge
// snapshot to. Writes are insert-only: an edge or file already present is
// left untouched.
type EdgeWriter interface {
	// SaveEdges stores edges and the fingerprint -> path registry entries
	// in paths, atomically.
	SaveEdges(ctx context.Context, edges []edge.Edge, paths map[uint64]string) error
}

// EdgeReader answers the usage queries.
type EdgeReader interface {
	// Edges returns every stored edge, sorted by ID.
	Edges(ctx context.Context) ([]edge.Edge, error)
	// EdgesFrom returns the edges whose From is fingerprint, sorted by ID.
	EdgesFrom(ctx context.Context, fingerprint uint64) ([]edge.Edge, error)
	// EdgesTo returns the edges whose To is fingerprint, sorted by ID.
	EdgesTo(ctx context.Context, fingerprint uint64) ([]edge.Edge, error)
	// Path returns the registered path of fingerprint.
	Path(ctx context.Context, fingerprint uint64) (string, bool, error)
}

// DataStore is a full edge store. Store (SQL) and MemoryStore implement it.
type DataStore interface {
	EdgeWriter
	EdgeReader
}

// Compile-time checks.
var (
	_ DataStore = (*Store)(nil)
	_ DataStore = (*MemoryStore)(nil)
)
