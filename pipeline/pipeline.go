// Package pipeline runs the consistency stages over one graph: unit repair,
// link resolution, aggregation and audit. Later stages read what earlier
// ones materialized, so the order is fixed.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Tezigudo/SaladBarOntology/aggregate"
	"github.com/Tezigudo/SaladBarOntology/audit"
	"github.com/Tezigudo/SaladBarOntology/declaration"
	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/metrics"
	"github.com/Tezigudo/SaladBarOntology/resolver"
)

// Stage names used in logs and metrics.
const (
	StageRepair    = "repair"
	StageResolve   = "resolve"
	StageAggregate = "aggregate"
	StageAudit     = "audit"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger passed to every stage.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithUnitPolicy sets the aggregation policy for portions in unknown units.
func WithUnitPolicy(policy aggregate.UnitPolicy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

// WithDeclarations enables salad-portion assignment and the declaration
// audit check.
func WithDeclarations(decl *declaration.Set) Option {
	return func(p *Pipeline) { p.decl = decl }
}

// WithRepair enables the unit repair stage.
func WithRepair(enabled bool) Option {
	return func(p *Pipeline) { p.repair = enabled }
}

// WithMetrics records stage outcomes in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = rec }
}

// Pipeline owns the graph for one run.
type Pipeline struct {
	g       *graph.Graph
	w       *graph.Writer
	logger  *slog.Logger
	policy  aggregate.UnitPolicy
	decl    *declaration.Set
	repair  bool
	metrics *metrics.Recorder
}

// New returns a Pipeline over g.
func New(g *graph.Graph, opts ...Option) *Pipeline {
	p := &Pipeline{
		g:      g,
		w:      graph.NewWriter(g),
		logger: slog.Default(),
		policy: aggregate.PolicyScaleOne,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Graph returns the graph the pipeline mutates.
func (p *Pipeline) Graph() *graph.Graph { return p.g }

// Changes returns every triple change made through this pipeline.
func (p *Pipeline) Changes() graph.Stats { return p.w.Stats() }

// ResolveResult combines the naming-convention links with the declared
// salad portions.
type ResolveResult struct {
	resolver.Result `yaml:",inline"`
	SaladPortion    *resolver.RelationResult `json:"salad_portion,omitempty" yaml:"salad_portion,omitempty"`
}

// Summary is the outcome of one Run.
type Summary struct {
	RunID    string                           `json:"run_id" yaml:"run_id"`
	Repair   *RepairResult                    `json:"repair,omitempty" yaml:"repair,omitempty"`
	Resolve  ResolveResult                    `json:"resolve" yaml:"resolve"`
	Salads   map[string]aggregate.SaladResult `json:"salads" yaml:"salads"`
	Audit    audit.Report                     `json:"audit" yaml:"audit"`
	Changes  graph.Stats                      `json:"changes" yaml:"changes"`
	Triples  int                              `json:"triples" yaml:"triples"`
	Duration time.Duration                    `json:"duration" yaml:"duration"`
}

// Changed reports whether the run modified the graph.
func (s Summary) Changed() bool { return s.Changes.Changed() }

// Run executes every stage in order. The context is checked between stages;
// a cancelled run leaves the graph as the last completed stage left it.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	before := p.w.Stats()
	sum := Summary{RunID: uuid.New().String()}
	logger := p.logger.With(slog.String("run_id", sum.RunID))
	logger.Info("Starting consistency run", slog.Int("triples", p.g.Len()))
	p.metrics.RunStarted()

	if p.repair {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res := timed(p, StageRepair, p.Repair)
		sum.Repair = &res
	}

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	sum.Resolve = timed(p, StageResolve, p.Resolve)

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	sum.Salads = timed(p, StageAggregate, p.Aggregate)

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	sum.Audit = timed(p, StageAudit, p.Audit)

	sum.Changes = diff(before, p.w.Stats())
	sum.Triples = p.g.Len()
	sum.Duration = time.Since(start)
	p.metrics.GraphSize(sum.Triples)

	logger.Info("Consistency run complete",
		slog.Int("added", sum.Changes.Added),
		slog.Int("removed", sum.Changes.Removed),
		slog.Int("salads", len(sum.Salads)),
		slog.Int("issues", len(sum.Audit.Issues)),
		slog.Duration("duration", sum.Duration))
	return sum, nil
}

// timed runs one stage and records its duration and triple changes.
func timed[T any](p *Pipeline, stage string, fn func() T) T {
	start := time.Now()
	before := p.w.Stats()
	out := fn()
	changes := diff(before, p.w.Stats())
	p.metrics.ObserveStage(stage, start)
	p.metrics.TriplesChanged(stage, changes.Added, changes.Removed)
	return out
}

// Resolve derives links from naming conventions, then assigns declared
// salad portions.
func (p *Pipeline) Resolve() ResolveResult {
	r := resolver.New(p.w, resolver.WithLogger(p.logger))
	res := ResolveResult{Result: r.ResolveLinks()}
	if p.decl != nil {
		assigned := r.AssignSaladPortions(p.decl)
		res.SaladPortion = &assigned
		p.recordRelation(resolver.RelationSaladPortion, assigned)
	}
	for relation, rr := range res.ByRelation() {
		p.recordRelation(relation, rr)
	}
	return res
}

func (p *Pipeline) recordRelation(relation string, rr resolver.RelationResult) {
	p.metrics.LinksResolved(relation, rr.Resolved)
	p.metrics.LinksMissing(relation, len(rr.Missing))
}

// Aggregate recomputes the totals of every salad.
func (p *Pipeline) Aggregate() map[string]aggregate.SaladResult {
	results := p.aggregator().AggregateAllSalads()
	for _, res := range results {
		p.metrics.SaladAggregated()
		for _, w := range res.Warnings {
			p.metrics.AggregateWarning(w.Kind)
		}
	}
	return results
}

// AggregateSalad recomputes the totals of one salad.
func (p *Pipeline) AggregateSalad(name string) (aggregate.SaladResult, error) {
	res, err := p.aggregator().AggregateSalad(name)
	if err != nil {
		return res, err
	}
	p.metrics.SaladAggregated()
	for _, w := range res.Warnings {
		p.metrics.AggregateWarning(w.Kind)
	}
	return res, nil
}

func (p *Pipeline) aggregator() *aggregate.Aggregator {
	return aggregate.New(p.w,
		aggregate.WithLogger(p.logger),
		aggregate.WithUnitPolicy(p.policy))
}

// ClearDerived removes every derived total from the graph.
func (p *Pipeline) ClearDerived() aggregate.ClearResult {
	return p.aggregator().ClearDerived()
}

// Audit checks the graph without modifying it.
func (p *Pipeline) Audit() audit.Report {
	opts := []audit.Option{audit.WithLogger(p.logger)}
	if p.decl != nil {
		opts = append(opts, audit.WithDeclarations(p.decl))
	}
	report := audit.New(p.g, opts...).Audit()
	p.metrics.AuditIssues(report.Counts())
	return report
}

func diff(before, after graph.Stats) graph.Stats {
	return graph.Stats{Added: after.Added - before.Added, Removed: after.Removed - before.Removed}
}
