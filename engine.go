package usegraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jward/usegraph/internal/edge"
	"github.com/jward/usegraph/internal/golang"
	"github.com/jward/usegraph/internal/store"
)

// ErrNoFiles is returned when a front end finds nothing to walk.
var ErrNoFiles = errors.New("usegraph: no source files")

// Frontend turns a project directory into syntax trees and a resolver.
type Frontend interface {
	Name() string
	Load(ctx context.Context, root string) (*Project, error)
}

// Engine orchestrates a run: load the project through a Frontend, walk every
// tree in parallel into one edge set, then persist the snapshot.
type Engine struct {
	store    store.DataStore
	closer   io.Closer // non-nil when the Engine opened the store itself
	frontend Frontend
	workers  int
	logger   *slog.Logger
	registry prometheus.Registerer
	metrics  *metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithFrontend sets the front end used by Index. Default: the Go front end.
func WithFrontend(f Frontend) Option {
	return func(e *Engine) {
		e.frontend = f
	}
}

// WithWorkers bounds the number of walkers running at once.
// Default: runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegisterer registers the Engine's metrics on reg instead of a private
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	return Open(store.DriverSQLite, dbPath, opts...)
}

// Open creates an Engine backed by the given SQL driver ("sqlite" or
// "postgres") and runs the schema migration.
func Open(driver, dsn string, opts ...Option) (*Engine, error) {
	s, err := store.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("usegraph: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("usegraph: migrate: %w", err)
	}
	e, err := NewWithStore(s, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	e.closer = s
	return e, nil
}

// NewWithStore creates an Engine over an existing store, such as a
// store.MemoryStore for dry runs. The caller keeps ownership of ds.
func NewWithStore(ds DataStore, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:   ds,
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.frontend == nil {
		e.frontend = golang.New(golang.WithLogger(e.logger))
	}
	if e.registry == nil {
		e.registry = prometheus.NewRegistry()
	}
	m, err := newMetrics(e.registry)
	if err != nil {
		return nil, fmt.Errorf("usegraph: register metrics: %w", err)
	}
	e.metrics = m
	return e, nil
}

// Close releases the Engine's database resources if it opened them.
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// Store returns the underlying edge store.
func (e *Engine) Store() DataStore {
	return e.store
}

// Query returns a QueryBuilder over the Engine's store.
func (e *Engine) Query() *QueryBuilder {
	return NewQueryBuilder(e.store)
}

// Result summarizes one run.
type Result struct {
	Files    int           `json:"files" yaml:"files"`
	Edges    []edge.Edge   `json:"edges" yaml:"edges"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Index loads the project under root with the configured front end and runs
// it.
func (e *Engine) Index(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	p, err := e.frontend.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("usegraph: load %s: %w", root, err)
	}
	e.logger.Debug("project loaded", "frontend", e.frontend.Name(), "root", root,
		"files", len(p.Trees), "elapsed", time.Since(start))
	return e.Run(ctx, p)
}

// Run walks every tree of p into a fresh edge set and, once all walkers have
// finished, persists the snapshot. A cancelled or failed walk persists
// nothing.
func (e *Engine) Run(ctx context.Context, p *Project) (*Result, error) {
	if p == nil || len(p.Trees) == 0 {
		return nil, ErrNoFiles
	}
	if p.Resolver == nil {
		return nil, errors.New("usegraph: project has no resolver")
	}

	start := time.Now()
	e.logger.Info("run started", "unit", p.Resolver.Unit(), "files", len(p.Trees), "workers", e.workers)

	set := edge.NewSet()
	if err := e.walkParallel(ctx, p, set); err != nil {
		return nil, err
	}

	// Barrier passed: every walker is done and the set is read once.
	edges := set.Edges()
	paths := make(map[uint64]string, len(p.Trees))
	for _, t := range p.Trees {
		paths[edge.Hash(t.Path)] = t.Path
	}
	if err := e.store.SaveEdges(ctx, edges, paths); err != nil {
		return nil, fmt.Errorf("usegraph: persist %d edge(s): %w", len(edges), err)
	}

	res := &Result{Files: len(p.Trees), Edges: edges, Duration: time.Since(start)}
	e.logger.Info("run finished", "unit", p.Resolver.Unit(), "edges", len(edges), "elapsed", res.Duration)
	return res, nil
}
