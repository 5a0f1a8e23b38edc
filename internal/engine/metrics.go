package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus instruments for the engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	assemblies      *prometheus.CounterVec
	assemblyLatency *prometheus.HistogramVec
	entityChecksums prometheus.Counter
	reusedChecksums prometheus.Counter
	treeChildren    prometheus.Histogram
	peeks           *prometheus.CounterVec
}

// NewMetrics registers engine instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		assemblies: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapsum",
			Name:      "assemblies_total",
			Help:      "Checksum tree assemblies by scope kind and outcome.",
		}, []string{"scope", "outcome"}),
		assemblyLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "snapsum",
			Name:      "assembly_duration_seconds",
			Help:      "Duration of checksum tree assembly.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}, []string{"scope"}),
		entityChecksums: f.NewCounter(prometheus.CounterOpts{
			Namespace: "snapsum",
			Name:      "entity_checksums_total",
			Help:      "Per-entity checksum requests issued to entity owners.",
		}),
		reusedChecksums: f.NewCounter(prometheus.CounterOpts{
			Namespace: "snapsum",
			Name:      "entity_checksums_reused_total",
			Help:      "Per-entity checksums taken from an already computed whole-snapshot tree.",
		}),
		treeChildren: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "snapsum",
			Name:      "tree_children",
			Help:      "Number of entity children per assembled tree.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}),
		peeks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapsum",
			Name:      "peeks_total",
			Help:      "Non-blocking checksum lookups by result.",
		}, []string{"result"}),
	}
}

func scopeLabel(scoped bool) string {
	if scoped {
		return "cone"
	}
	return "whole"
}

func (m *Metrics) observeAssembly(scoped bool, outcome string, d time.Duration, children int) {
	if m == nil {
		return
	}
	label := scopeLabel(scoped)
	m.assemblies.WithLabelValues(label, outcome).Inc()
	m.assemblyLatency.WithLabelValues(label).Observe(d.Seconds())
	if outcome == outcomeOK {
		m.treeChildren.Observe(float64(children))
	}
}

func (m *Metrics) observeEntityChecksum() {
	if m == nil {
		return
	}
	m.entityChecksums.Inc()
}

func (m *Metrics) observeReused(n int) {
	if m == nil || n == 0 {
		return
	}
	m.reusedChecksums.Add(float64(n))
}

func (m *Metrics) observePeek(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.peeks.WithLabelValues("hit").Inc()
		return
	}
	m.peeks.WithLabelValues("miss").Inc()
}
