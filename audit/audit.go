// Package audit scans a salad bar graph for missing relations and unit
// inconsistencies. An Auditor only reads the graph.
package audit

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Tezigudo/SaladBarOntology/declaration"
	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/units"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Issue categories.
const (
	CategoryMissingSubstancePortion  = "missing-substance-portion"
	CategoryInconsistentUnit         = "inconsistent-substance-unit"
	CategoryNoExpectedUnit           = "no-expected-unit"
	CategoryUnresolvedDeclaration    = "unresolved-declaration"
	CategoryPortionUnit              = "portion-unit"
	CategoryNegativeAmount           = "negative-amount"
	CategoryUnlinkedPortion          = "unlinked-portion"
	CategoryOrphanPortion            = "orphan-portion"
	CategoryDanglingSubstancePortion = "dangling-substance-portion"
)

// Issue is one finding. Related lists the individuals the finding points
// at, such as the deviating portions of an inconsistent substance.
type Issue struct {
	Category string   `json:"category" yaml:"category"`
	Subject  string   `json:"subject" yaml:"subject"`
	Detail   string   `json:"detail" yaml:"detail"`
	Related  []string `json:"related,omitempty" yaml:"related,omitempty"`
}

// Report is the result of one audit.
type Report struct {
	Issues []Issue `json:"issues" yaml:"issues"`
}

// Counts returns the number of issues per category.
func (r Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, is := range r.Issues {
		counts[is.Category]++
	}
	return counts
}

// ByCategory returns the issues of one category.
func (r Report) ByCategory(category string) []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Category == category {
			out = append(out, is)
		}
	}
	return out
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDeclarations enables the salad declaration check.
func WithDeclarations(decl *declaration.Set) Option {
	return func(a *Auditor) { a.decl = decl }
}

// Auditor checks one graph.
type Auditor struct {
	g      *graph.Graph
	decl   *declaration.Set
	logger *slog.Logger
}

// New returns an Auditor over g.
func New(g *graph.Graph, opts ...Option) *Auditor {
	a := &Auditor{g: g, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Audit runs every check and returns the issues sorted by category and
// subject.
func (a *Auditor) Audit() Report {
	ix := graph.NewIndex(a.g)

	var issues []Issue
	issues = append(issues, a.checkSubstanceData(ix)...)
	issues = append(issues, a.checkSubstanceUnits(ix)...)
	issues = append(issues, a.checkPortions(ix)...)
	if a.decl != nil {
		issues = append(issues, a.checkDeclarations(ix)...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Category != issues[j].Category {
			return issues[i].Category < issues[j].Category
		}
		return issues[i].Subject < issues[j].Subject
	})
	a.logger.Info("Audit complete", slog.Int("issues", len(issues)))
	return Report{Issues: issues}
}

// checkSubstanceData reports ingredients and dressings without any
// hasSubstancePortion.
func (a *Auditor) checkSubstanceData(ix *graph.Index) []Issue {
	var out []Issue
	for _, class := range []string{salad.ClassIngredient, salad.ClassDressing} {
		kind := strings.ToLower(salad.LocalName(class))
		for _, e := range ix.InstancesOf(class) {
			if len(a.g.Objects(e, salad.PropHasSubstancePortion)) > 0 {
				continue
			}
			out = append(out, Issue{
				Category: CategoryMissingSubstancePortion,
				Subject:  salad.LocalName(e),
				Detail:   kind + " has no hasSubstancePortion",
			})
		}
	}
	return out
}

type observed struct {
	portion string
	unit    string
}

// checkSubstanceUnits groups substance portions by substance and reports
// substances whose portions disagree on the unit, or use a unit other than
// the expected one.
func (a *Auditor) checkSubstanceUnits(ix *graph.Index) []Issue {
	bySubstance := make(map[string][]observed)
	var out []Issue

	for _, sp := range ix.InstancesOf(salad.ClassSubstancePortion) {
		local := salad.LocalName(sp)
		substance := ""
		if s, ok := a.g.Object(sp, salad.PropHasSubstance); ok {
			substance = salad.LocalName(s.Value)
		} else {
			out = append(out, Issue{
				Category: CategoryDanglingSubstancePortion,
				Subject:  local,
				Detail:   "substance portion has no hasSubstance",
			})
			substance = salad.SubstanceSuffix(local)
		}
		if substance == "" {
			continue
		}
		unit := ""
		if u, ok := a.g.Object(sp, salad.PropHasUnit); ok {
			unit = strings.TrimSpace(u.Value)
		}
		bySubstance[substance] = append(bySubstance[substance], observed{portion: local, unit: unit})
	}

	names := make([]string, 0, len(bySubstance))
	for name := range bySubstance {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		obs := bySubstance[name]
		counts := make(map[string]int)
		for _, o := range obs {
			counts[o.unit]++
		}

		reference, known := "", false
		if s, ok := salad.LookupSubstance(name); ok {
			reference, known = s.ExpectedUnit, true
		} else {
			reference = majority(counts)
			out = append(out, Issue{
				Category: CategoryNoExpectedUnit,
				Subject:  name,
				Detail:   "no expected unit defined for substance",
			})
		}
		if len(counts) == 1 && counts[reference] > 0 {
			continue
		}

		var deviating []string
		for _, o := range obs {
			if o.unit != reference {
				deviating = append(deviating, o.portion)
			}
		}
		sort.Strings(deviating)
		detail := "units found: " + formatCounts(counts)
		if known {
			detail += "; expected " + reference
		} else {
			detail += "; majority " + reference
		}
		out = append(out, Issue{
			Category: CategoryInconsistentUnit,
			Subject:  name,
			Detail:   detail,
			Related:  deviating,
		})
	}
	return out
}

var portionChecks = []struct {
	class, link, unit string
}{
	{salad.ClassIngredientPortion, salad.PropHasIngredient, units.Grams},
	{salad.ClassDressingPortion, salad.PropHasDressing, units.Millilitres},
}

// checkPortions reports portions that are unlinked, owned by no salad,
// carry a negative amount or a unit outside their canonical unit.
func (a *Auditor) checkPortions(ix *graph.Index) []Issue {
	var out []Issue
	for _, pc := range portionChecks {
		kind := salad.LocalName(pc.class)
		for _, p := range ix.InstancesOf(pc.class) {
			local := salad.LocalName(p)
			if _, ok := a.g.Object(p, pc.link); !ok {
				out = append(out, Issue{
					Category: CategoryUnlinkedPortion,
					Subject:  local,
					Detail:   fmt.Sprintf("%s has no %s", kind, salad.LocalName(pc.link)),
				})
			}
			owners := len(a.g.Subjects(salad.PropHasIngredientPortion, graph.IRI(p))) +
				len(a.g.Subjects(salad.PropHasDressingPortion, graph.IRI(p)))
			if owners == 0 {
				out = append(out, Issue{
					Category: CategoryOrphanPortion,
					Subject:  local,
					Detail:   kind + " is not part of any salad",
				})
			}
			if u, ok := a.g.Object(p, salad.PropHasUnit); ok && u.Value != pc.unit {
				out = append(out, Issue{
					Category: CategoryPortionUnit,
					Subject:  local,
					Detail:   fmt.Sprintf("%s unit %q, expected %q", kind, u.Value, pc.unit),
				})
			}
			if amt, ok := a.g.Object(p, salad.PropHasAmount); ok {
				if v, ok := amt.Float(); ok && v < 0 {
					out = append(out, Issue{
						Category: CategoryNegativeAmount,
						Subject:  local,
						Detail:   fmt.Sprintf("amount %s is negative", amt.Value),
					})
				}
			}
		}
	}
	return out
}

// checkDeclarations reports declared salad-portion pairs naming an unknown
// salad or portion.
func (a *Auditor) checkDeclarations(ix *graph.Index) []Issue {
	salads := ix.ByLocalName(salad.ClassSalad)
	portions := ix.ByLocalName(salad.ClassIngredientPortion)
	for name, iri := range ix.ByLocalName(salad.ClassDressingPortion) {
		portions[name] = iri
	}

	var out []Issue
	for _, pair := range a.decl.Pairs() {
		_, saladOK := salads[pair.Salad]
		_, portionOK := portions[pair.Portion]
		if saladOK && portionOK {
			continue
		}
		var missing []string
		if !saladOK {
			missing = append(missing, "unknown salad "+pair.Salad)
		}
		if !portionOK {
			missing = append(missing, "unknown portion "+pair.Portion)
		}
		detail := strings.Join(missing, ", ")
		if pair.Source != "" {
			detail += " (" + pair.Source + ")"
		}
		out = append(out, Issue{
			Category: CategoryUnresolvedDeclaration,
			Subject:  pair.Salad + " -> " + pair.Portion,
			Detail:   detail,
		})
	}
	return out
}

// majority returns the most frequent unit, breaking ties by name.
func majority(counts map[string]int) string {
	best, bestN := "", -1
	for unit, n := range counts {
		if n > bestN || (n == bestN && unit < best) {
			best, bestN = unit, n
		}
	}
	return best
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for u := range counts {
		keys = append(keys, u)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, u := range keys {
		label := u
		if label == "" {
			label = "(none)"
		}
		parts[i] = fmt.Sprintf("%s (%d)", label, counts[u])
	}
	return strings.Join(parts, ", ")
}
