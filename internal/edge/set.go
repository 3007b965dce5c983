package edge

import (
	"sort"
	"sync"
)

// Set is the insert-only edge collection shared by all walkers of one run.
// Insert is safe for concurrent use. Because an ID always carries the same
// payload, racing inserts of equal edges are harmless no-ops.
type Set struct {
	mu    sync.Mutex
	edges map[uint64]Edge
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{edges: make(map[uint64]Edge)}
}

// Insert adds e unless an edge with the same ID is already present.
// Reports whether e was added.
func (s *Set) Insert(e Edge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[e.ID]; ok {
		return false
	}
	s.edges[e.ID] = e
	return true
}

// Len returns the number of distinct edges.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

// Edges returns every stored edge ordered by ID. Only meaningful once all
// writers have finished.
func (s *Set) Edges() []Edge {
	s.mu.Lock()
	out := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
