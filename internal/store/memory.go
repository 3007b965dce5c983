package store

import (
	"context"
	"sync"

	"github.com/jward/usegraph/internal/edge"
)

// MemoryStore buffers edges and registry entries in memory. It has the same
// insert-only semantics as Store and backs dry runs and tests.
//
// Thread safety: the mutex protects both maps.
type MemoryStore struct {
	mu    sync.Mutex
	edges map[uint64]edge.Edge
	paths map[uint64]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		edges: make(map[uint64]edge.Edge),
		paths: make(map[uint64]string),
	}
}

// SaveEdges inserts edges and paths, keeping rows that already exist.
func (m *MemoryStore) SaveEdges(ctx context.Context, edges []edge.Edge, paths map[uint64]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, e := range edges {
		if err := e.Verify(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for fp, p := range paths {
		if _, ok := m.paths[fp]; !ok {
			m.paths[fp] = p
		}
	}
	for _, e := range edges {
		if _, ok := m.edges[e.ID]; !ok {
			m.edges[e.ID] = e
		}
	}
	return nil
}

// Edges returns every stored edge, sorted by ID.
func (m *MemoryStore) Edges(ctx context.Context) ([]edge.Edge, error) {
	return m.filter(func(edge.Edge) bool { return true }), nil
}

// EdgesFrom returns the edges whose From is fingerprint.
func (m *MemoryStore) EdgesFrom(ctx context.Context, fingerprint uint64) ([]edge.Edge, error) {
	return m.filter(func(e edge.Edge) bool { return e.From == fingerprint }), nil
}

// EdgesTo returns the edges whose To is fingerprint.
func (m *MemoryStore) EdgesTo(ctx context.Context, fingerprint uint64) ([]edge.Edge, error) {
	return m.filter(func(e edge.Edge) bool { return e.To == fingerprint }), nil
}

// Path returns the registered path of a fingerprint.
func (m *MemoryStore) Path(ctx context.Context, fingerprint uint64) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.paths[fingerprint]
	return p, ok, nil
}

// Len returns the number of stored edges.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edges)
}

func (m *MemoryStore) filter(keep func(edge.Edge) bool) []edge.Edge {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []edge.Edge
	for _, e := range m.edges {
		if keep(e) {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}
