// Package metrics records consistency-run counters in a private prometheus
// registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors of one process.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal        prometheus.Counter
	linksResolved    *prometheus.CounterVec
	linksMissing     *prometheus.CounterVec
	saladsAggregated prometheus.Counter
	aggregateWarns   *prometheus.CounterVec
	auditIssues      *prometheus.GaugeVec
	triplesChanged   *prometheus.CounterVec
	graphTriples     prometheus.Gauge
	stageDuration    *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saladbar_runs_total",
			Help: "Number of consistency runs.",
		}),
		linksResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saladbar_links_resolved_total",
			Help: "Links added by the resolver, by relation.",
		}, []string{"relation"}),
		linksMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saladbar_links_missing_total",
			Help: "Links the resolver could not find a target for, by relation.",
		}, []string{"relation"}),
		saladsAggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saladbar_salads_aggregated_total",
			Help: "Salads whose nutrient totals were recomputed.",
		}),
		aggregateWarns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saladbar_aggregate_warnings_total",
			Help: "Aggregation warnings, by kind.",
		}, []string{"kind"}),
		auditIssues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "saladbar_audit_issues",
			Help: "Issues found by the last audit, by category.",
		}, []string{"category"}),
		triplesChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saladbar_triples_changed_total",
			Help: "Triples added or removed, by stage and operation.",
		}, []string{"stage", "op"}),
		graphTriples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "saladbar_graph_triples",
			Help: "Triples in the graph after the last run.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "saladbar_stage_duration_seconds",
			Help:    "Time taken by each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	r.registry.MustRegister(
		r.runsTotal,
		r.linksResolved,
		r.linksMissing,
		r.saladsAggregated,
		r.aggregateWarns,
		r.auditIssues,
		r.triplesChanged,
		r.graphTriples,
		r.stageDuration,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RunStarted counts one pipeline run.
func (r *Recorder) RunStarted() {
	if r == nil {
		return
	}
	r.runsTotal.Inc()
}

// LinksResolved adds n links created for relation.
func (r *Recorder) LinksResolved(relation string, n int) {
	if r == nil {
		return
	}
	r.linksResolved.WithLabelValues(relation).Add(float64(n))
}

// LinksMissing adds n links whose target could not be found.
func (r *Recorder) LinksMissing(relation string, n int) {
	if r == nil {
		return
	}
	r.linksMissing.WithLabelValues(relation).Add(float64(n))
}

// SaladAggregated counts one salad whose totals were recomputed.
func (r *Recorder) SaladAggregated() {
	if r == nil {
		return
	}
	r.saladsAggregated.Inc()
}

// AggregateWarning counts one aggregation warning of kind.
func (r *Recorder) AggregateWarning(kind string) {
	if r == nil {
		return
	}
	r.aggregateWarns.WithLabelValues(kind).Inc()
}

// AuditIssues replaces the per-category issue gauges with counts.
func (r *Recorder) AuditIssues(counts map[string]int) {
	if r == nil {
		return
	}
	r.auditIssues.Reset()
	for category, n := range counts {
		r.auditIssues.WithLabelValues(category).Set(float64(n))
	}
}

// TriplesChanged adds the triples a stage added and removed.
func (r *Recorder) TriplesChanged(stage string, added, removed int) {
	if r == nil {
		return
	}
	r.triplesChanged.WithLabelValues(stage, "add").Add(float64(added))
	r.triplesChanged.WithLabelValues(stage, "remove").Add(float64(removed))
}

// GraphSize sets the current triple count.
func (r *Recorder) GraphSize(n int) {
	if r == nil {
		return
	}
	r.graphTriples.Set(float64(n))
}

// ObserveStage records how long a stage took since start.
func (r *Recorder) ObserveStage(stage string, start time.Time) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
