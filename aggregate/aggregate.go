// Package aggregate computes the absolute nutrient totals of each salad and
// materializes them as derived SaladNutrientTotal and SaladSubstance nodes.
//
// Derived data is fully recomputed on every call. Stale totals are cleared
// before new ones are written, so repeated runs over an unchanged graph
// leave it unchanged.
package aggregate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/units"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// ErrSaladNotFound is returned when the requested salad is not declared.
var ErrSaladNotFound = errors.New("salad not found")

// UnitPolicy decides what happens to a portion whose unit is neither mass
// nor volume.
type UnitPolicy string

const (
	// PolicyScaleOne uses a scale factor of 1.0 and warns.
	PolicyScaleOne UnitPolicy = "scale-one"
	// PolicySkip leaves the portion out of the totals and warns.
	PolicySkip UnitPolicy = "skip"
)

// ParseUnitPolicy validates a policy name. The empty string selects
// PolicyScaleOne.
func ParseUnitPolicy(s string) (UnitPolicy, error) {
	switch UnitPolicy(s) {
	case "", PolicyScaleOne:
		return PolicyScaleOne, nil
	case PolicySkip:
		return PolicySkip, nil
	}
	return "", fmt.Errorf("unknown unit policy %q", s)
}

// Warning kinds.
const (
	WarnUnknownPortionUnit  = "unknown-portion-unit"
	WarnUnitMismatch        = "unit-mismatch"
	WarnUnrecognizedUnit    = "unrecognized-unit"
	WarnUnlinkedPortion     = "unlinked-portion"
	WarnMissingAmount       = "missing-amount"
	WarnUnlinkedSubstanceSP = "unlinked-substance-portion"
	WarnNoExpectedUnit      = "no-expected-unit"
)

// Total is the absolute amount of one substance in one salad.
type Total struct {
	Amount float64 `json:"amount" yaml:"amount"`
	Unit   string  `json:"unit" yaml:"unit"`
}

// Warning is a data-quality finding raised while aggregating.
type Warning struct {
	Kind    string `json:"kind" yaml:"kind"`
	Subject string `json:"subject" yaml:"subject"`
	Detail  string `json:"detail" yaml:"detail"`
}

// SaladResult is the outcome of aggregating one salad.
type SaladResult struct {
	Salad    string           `json:"salad" yaml:"salad"`
	Totals   map[string]Total `json:"totals" yaml:"totals"`
	Warnings []Warning        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	// Skipped lists portions left out under PolicySkip.
	Skipped []string    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Changes graph.Stats `json:"changes" yaml:"changes"`
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger for warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithUnitPolicy sets the policy for portions with unknown units.
func WithUnitPolicy(p UnitPolicy) Option {
	return func(a *Aggregator) {
		if p != "" {
			a.policy = p
		}
	}
}

// Aggregator computes and writes salad totals through a graph.Writer.
type Aggregator struct {
	w      *graph.Writer
	logger *slog.Logger
	policy UnitPolicy
}

// New returns an Aggregator writing through w.
func New(w *graph.Writer, opts ...Option) *Aggregator {
	a := &Aggregator{w: w, logger: slog.Default(), policy: PolicyScaleOne}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AggregateSalad recomputes and materializes the totals of one salad. name
// is a local name or a full IRI.
func (a *Aggregator) AggregateSalad(name string) (SaladResult, error) {
	ix := graph.NewIndex(a.w.Graph())
	iri := salad.IRI(name)
	if !ix.IsInstanceOf(iri, salad.ClassSalad) {
		return SaladResult{}, fmt.Errorf("%w: %s", ErrSaladNotFound, name)
	}
	return a.aggregate(newComposition(a.w.Graph()), iri), nil
}

// AggregateAllSalads recomputes every declared salad. Results are keyed by
// salad local name.
func (a *Aggregator) AggregateAllSalads() map[string]SaladResult {
	g := a.w.Graph()
	ix := graph.NewIndex(g)
	comp := newComposition(g)

	salads := ix.InstancesOf(salad.ClassSalad)
	results := make(map[string]SaladResult)
	for _, iri := range salads {
		res := a.aggregate(comp, iri)
		results[res.Salad] = res
	}
	removed := a.clearOrphans(salads)
	a.logger.Info("Aggregated salads",
		slog.Int("salads", len(results)),
		slog.Int("orphaned_nodes_removed", removed))
	return results
}

// clearOrphans retracts derived nodes that none of salads owns: nutrition
// nodes no current salad links to through hasNutrient, and SaladSubstance
// nodes no remaining nutrition node links to. It returns the number of
// nodes removed.
func (a *Aggregator) clearOrphans(salads []string) int {
	g := a.w.Graph()
	owned := make(map[string]struct{})
	for _, s := range salads {
		for _, n := range g.Objects(s, salad.PropHasNutrient) {
			owned[n.Value] = struct{}{}
		}
	}

	ix := graph.NewIndex(g)
	removed := 0
	kept := make(map[string]struct{})
	for _, nutrition := range ix.InstancesOf(salad.ClassSaladNutrientTotal) {
		if _, ok := owned[nutrition]; ok {
			for _, t := range g.Match(nutrition, "", nil) {
				if salad.IsTotalProperty(t.Predicate) && t.Object.IsIRI() {
					kept[t.Object.Value] = struct{}{}
				}
			}
			continue
		}
		a.logger.Debug("Removing orphaned nutrition node", slog.String("node", salad.LocalName(nutrition)))
		a.w.RetractNode(nutrition)
		removed++
	}
	for _, node := range ix.InstancesOf(salad.ClassSaladSubstance) {
		if _, ok := kept[node]; ok {
			continue
		}
		a.logger.Debug("Removing orphaned salad substance", slog.String("node", salad.LocalName(node)))
		a.w.RetractNode(node)
		removed++
	}
	return removed
}

type accumulator struct {
	amount float64
	unit   string
}

func (a *Aggregator) aggregate(comp *composition, saladIRI string) SaladResult {
	before := a.w.Stats()
	res := SaladResult{Salad: salad.LocalName(saladIRI), Totals: make(map[string]Total)}
	warn := func(kind, subject, detail string) {
		res.Warnings = append(res.Warnings, Warning{Kind: kind, Subject: subject, Detail: detail})
		a.logger.Warn("Aggregation warning",
			slog.String("salad", res.Salad),
			slog.String("kind", kind),
			slog.String("subject", subject),
			slog.String("detail", detail))
	}

	sums := make(map[string]*accumulator)
	for _, p := range comp.portionsOf(saladIRI) {
		if p.base == "" {
			warn(WarnUnlinkedPortion, p.name, "portion has no base ingredient or dressing")
			continue
		}
		if !p.hasAmount {
			warn(WarnMissingAmount, p.name, "portion has no numeric hasAmount")
			continue
		}
		factor, ok := units.ScaleFactor(p.amount, p.unit)
		if !ok {
			if a.policy == PolicySkip {
				warn(WarnUnknownPortionUnit, p.name, fmt.Sprintf("unit %q is neither grams nor millilitres; portion skipped", p.unit))
				res.Skipped = append(res.Skipped, p.name)
				continue
			}
			warn(WarnUnknownPortionUnit, p.name, fmt.Sprintf("unit %q is neither grams nor millilitres; scale factor 1.0", p.unit))
		}

		for _, c := range comp.contentsOf(p.base) {
			if c.substance == "" {
				warn(WarnUnlinkedSubstanceSP, c.name, "substance portion has no hasSubstance")
				continue
			}
			if !c.hasAmount {
				warn(WarnMissingAmount, c.name, "substance portion has no numeric hasAmount")
				continue
			}
			q, recognized := units.Normalize(c.substance, units.Quantity{Amount: c.amount, Unit: c.unit})
			if !recognized {
				warn(WarnUnrecognizedUnit, c.name, fmt.Sprintf("unit %q used as is", c.unit))
			}
			acc, ok := sums[c.substance]
			if !ok {
				acc = &accumulator{unit: q.Unit}
				sums[c.substance] = acc
			} else if acc.unit != q.Unit {
				warn(WarnUnitMismatch, c.name, fmt.Sprintf("%s summed in %q and %q", c.substance, acc.unit, q.Unit))
			}
			acc.amount += q.Amount * factor
		}
	}

	for _, name := range sortedKeys(sums) {
		acc := sums[name]
		s, known := salad.LookupSubstance(name)
		if !known {
			warn(WarnNoExpectedUnit, res.Salad+name, fmt.Sprintf("%s has no expected unit; total not materialized", name))
			continue
		}
		if acc.unit != s.ExpectedUnit {
			warn(WarnUnitMismatch, res.Salad+name, fmt.Sprintf("%s expected in %q, got %q", name, s.ExpectedUnit, acc.unit))
		}
		res.Totals[name] = Total{Amount: acc.amount, Unit: s.DisplayUnit}
	}

	a.materialize(saladIRI, res.Totals)
	after := a.w.Stats()
	res.Changes = graph.Stats{Added: after.Added - before.Added, Removed: after.Removed - before.Removed}
	return res
}

// materialize writes the totals of one salad and clears everything derived
// for it that is no longer current.
func (a *Aggregator) materialize(saladIRI string, totals map[string]Total) {
	g := a.w.Graph()
	nutrition := salad.NutritionNodeIRI(saladIRI)

	current := make(map[string]string, len(totals))
	for name := range totals {
		current[salad.TotalPropertyIRI(name)] = salad.SaladSubstanceIRI(saladIRI, name)
	}
	currentNodes := make(map[string]struct{}, len(current))
	for _, node := range current {
		currentNodes[node] = struct{}{}
	}

	for _, t := range g.Match(nutrition, "", nil) {
		if !salad.IsTotalProperty(t.Predicate) {
			continue
		}
		if node, ok := current[t.Predicate]; ok && t.Object.Key() == node {
			continue
		}
		obj := t.Object
		a.w.Retract(t.Subject, t.Predicate, &obj)
		if _, keep := currentNodes[obj.Key()]; !keep && obj.IsIRI() && isSaladSubstance(g, obj.Value) {
			a.w.RetractNode(obj.Value)
		}
	}
	for _, s := range salad.Substances() {
		node := salad.SaladSubstanceIRI(saladIRI, s.Name)
		if _, keep := currentNodes[node]; !keep && isSaladSubstance(g, node) {
			a.w.RetractNode(node)
		}
	}

	if len(totals) == 0 {
		if g.HasSubject(nutrition) {
			a.w.RetractNode(nutrition)
		}
		return
	}

	a.w.AddTripleIfAbsent(nutrition, salad.RDFType, graph.IRI(salad.ClassSaladNutrientTotal))
	a.w.UpsertTriple(saladIRI, salad.PropHasNutrient, graph.IRI(nutrition))
	for _, name := range sortedKeys(totals) {
		total := totals[name]
		node := salad.SaladSubstanceIRI(saladIRI, name)
		a.w.AddTripleIfAbsent(node, salad.RDFType, graph.IRI(salad.ClassSaladSubstance))
		a.w.UpsertTriple(node, salad.PropHasAmount, graph.Decimal(total.Amount))
		a.w.UpsertTriple(node, salad.PropHasUnit, graph.String(total.Unit))
		a.w.UpsertTriple(nutrition, salad.TotalPropertyIRI(name), graph.IRI(node))
	}
}

func isSaladSubstance(g *graph.Graph, node string) bool {
	return g.Has(graph.Triple{Subject: node, Predicate: salad.RDFType, Object: graph.IRI(salad.ClassSaladSubstance)})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
