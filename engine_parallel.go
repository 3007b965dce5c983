package usegraph

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jward/usegraph/internal/edge"
	"github.com/jward/usegraph/internal/walker"
)

// walkParallel runs one walker per tree on a pool of e.workers goroutines.
// The context is checked before each walker starts; a walker that has started
// runs to completion. The first walker error cancels the walkers that have
// not started yet and is returned.
func (e *Engine) walkParallel(ctx context.Context, p *Project, set *edge.Set) error {
	sink := &countingSink{set: set, metrics: e.metrics}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, tree := range p.Trees {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			err := walker.Walk(tree, p.Resolver, sink)
			e.metrics.observeWalk(time.Since(start), err)
			if err != nil {
				e.logger.Warn("walker failed", "path", tree.Path, "error", err)
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("usegraph: %w", err)
	}
	return ctx.Err()
}

// countingSink forwards to the run's edge set and counts new and duplicate
// inserts.
type countingSink struct {
	set     *edge.Set
	metrics *metrics
}

func (s *countingSink) Insert(e edge.Edge) bool {
	added := s.set.Insert(e)
	if added {
		s.metrics.edgesInserted.Inc()
	} else {
		s.metrics.edgesDuplicate.Inc()
	}
	return added
}
