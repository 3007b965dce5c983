package usegraph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics are the Engine's Prometheus collectors. Each Engine registers its
// own set on its registerer.
type metrics struct {
	walkerRuns     *prometheus.CounterVec
	edgesInserted  prometheus.Counter
	edgesDuplicate prometheus.Counter
	walkDuration   prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		// Labels: status (ok, error)
		walkerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "usegraph",
			Name:      "walker_runs_total",
			Help:      "Walkers run, by outcome",
		}, []string{"status"}),
		edgesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usegraph",
			Name:      "edges_inserted_total",
			Help:      "Edges newly added to a run's edge set",
		}),
		edgesDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usegraph",
			Name:      "edges_duplicate_total",
			Help:      "Edge inserts discarded because the edge was already present",
		}),
		walkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "usegraph",
			Name:      "walk_duration_seconds",
			Help:      "Time spent walking one syntax tree",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
	for _, c := range []prometheus.Collector{m.walkerRuns, m.edgesInserted, m.edgesDuplicate, m.walkDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observeWalk(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.walkerRuns.WithLabelValues(status).Inc()
	m.walkDuration.Observe(d.Seconds())
}
