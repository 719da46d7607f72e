package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResolverCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResolver(reg)

	m.OwnerLookup(OwnerResolved)
	m.OwnerLookup(OwnerDiscarded)
	m.OwnerLookup(OwnerDiscarded)
	m.Recomputed()
	m.Emitted("base")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ownerLookups.WithLabelValues(OwnerResolved)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ownerLookups.WithLabelValues(OwnerDiscarded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emissions.WithLabelValues("base")))
}

func TestIndexerObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIndexer(reg)

	m.ObserveRequest(20*time.Millisecond, nil)
	m.ObserveRequest(time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNilReceivers(t *testing.T) {
	var r *Resolver
	var i *Indexer
	assert.NotPanics(t, func() {
		r.OwnerLookup(OwnerFailed)
		r.Recomputed()
		r.Emitted("pending")
		i.ObserveRequest(time.Millisecond, nil)
	})
}
