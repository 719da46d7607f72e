// Package metrics holds the Prometheus collectors for owner resolution and
// entity recomposition. All methods are safe on a nil receiver so components
// can run without metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Owner lookup outcomes as seen by the resolver.
const (
	OwnerResolved  = "resolved"
	OwnerFailed    = "failed"
	OwnerDiscarded = "discarded"
)

type Indexer struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewIndexer(reg prometheus.Registerer) *Indexer {
	f := promauto.With(reg)
	return &Indexer{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartassembly_indexer_requests_total",
			Help: "Owner queries sent to the indexer, by result",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartassembly_indexer_request_seconds",
			Help:    "Owner query latency including world resolution",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		}),
	}
}

func (m *Indexer) ObserveRequest(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.requests.WithLabelValues(result).Inc()
	m.duration.Observe(d.Seconds())
}

type Resolver struct {
	ownerLookups   *prometheus.CounterVec
	recomputations prometheus.Counter
	emissions      *prometheus.CounterVec
}

func NewResolver(reg prometheus.Registerer) *Resolver {
	f := promauto.With(reg)
	return &Resolver{
		ownerLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartassembly_owner_lookups_total",
			Help: "Completed owner lookups, by outcome",
		}, []string{"outcome"}),
		recomputations: f.NewCounter(prometheus.CounterOpts{
			Name: "smartassembly_recomputations_total",
			Help: "Resolution passes over the record store",
		}),
		emissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartassembly_emissions_total",
			Help: "Results emitted, by completeness",
		}, []string{"state"}),
	}
}

func (m *Resolver) OwnerLookup(outcome string) {
	if m == nil {
		return
	}
	m.ownerLookups.WithLabelValues(outcome).Inc()
}

func (m *Resolver) Recomputed() {
	if m == nil {
		return
	}
	m.recomputations.Inc()
}

// Emitted records one emission; state is "variant", "base", or "pending".
func (m *Resolver) Emitted(state string) {
	if m == nil {
		return
	}
	m.emissions.WithLabelValues(state).Inc()
}
