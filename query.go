package usegraph

import (
	"context"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jward/usegraph/internal/edge"
	"github.com/jward/usegraph/internal/store"
)

// pathCacheSize bounds the fingerprint -> path cache of a QueryBuilder.
const pathCacheSize = 4096

// QueryBuilder answers file usage queries over a store, translating
// fingerprints back to paths through the files registry.
type QueryBuilder struct {
	store store.EdgeReader
	paths *lru.Cache[uint64, string]
}

// Usage is an edge with both endpoints resolved to paths. An endpoint missing
// from the registry is rendered as its decimal fingerprint.
type Usage struct {
	ID   uint64    `json:"id,string" yaml:"id"`
	From string    `json:"from" yaml:"from"`
	To   string    `json:"to" yaml:"to"`
	Kind edge.Kind `json:"kind" yaml:"kind"`
}

// NewQueryBuilder returns a QueryBuilder reading from r.
func NewQueryBuilder(r store.EdgeReader) *QueryBuilder {
	cache, err := lru.New[uint64, string](pathCacheSize)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &QueryBuilder{store: r, paths: cache}
}

// Usages returns the files that path uses: one entry per outgoing edge.
func (q *QueryBuilder) Usages(ctx context.Context, path string) ([]Usage, error) {
	edges, err := q.store.EdgesFrom(ctx, edge.Hash(path))
	if err != nil {
		return nil, fmt.Errorf("usages: %w", err)
	}
	return q.resolve(ctx, edges)
}

// UsedBy returns the files that use path: one entry per incoming edge.
func (q *QueryBuilder) UsedBy(ctx context.Context, path string) ([]Usage, error) {
	edges, err := q.store.EdgesTo(ctx, edge.Hash(path))
	if err != nil {
		return nil, fmt.Errorf("used by: %w", err)
	}
	return q.resolve(ctx, edges)
}

// Edges returns every stored edge with paths resolved.
func (q *QueryBuilder) Edges(ctx context.Context) ([]Usage, error) {
	edges, err := q.store.Edges(ctx)
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}
	return q.resolve(ctx, edges)
}

func (q *QueryBuilder) resolve(ctx context.Context, edges []edge.Edge) ([]Usage, error) {
	out := make([]Usage, 0, len(edges))
	for _, e := range edges {
		from, err := q.path(ctx, e.From)
		if err != nil {
			return nil, err
		}
		to, err := q.path(ctx, e.To)
		if err != nil {
			return nil, err
		}
		out = append(out, Usage{ID: e.ID, From: from, To: to, Kind: e.Kind})
	}
	return out, nil
}

func (q *QueryBuilder) path(ctx context.Context, fp uint64) (string, error) {
	if p, ok := q.paths.Get(fp); ok {
		return p, nil
	}
	p, ok, err := q.store.Path(ctx, fp)
	if err != nil {
		return "", fmt.Errorf("lookup path: %w", err)
	}
	if !ok {
		// Not cached: the file may be registered by a later run.
		return strconv.FormatUint(fp, 10), nil
	}
	q.paths.Add(fp, p)
	return p, nil
}
