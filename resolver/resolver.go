// Package resolver derives the links between portions and the entities they
// quantify from the names of the portions.
//
// Resolution is strict: a portion is linked only when its parsed base name
// is exactly the local name of a declared entity of the expected class.
// Nothing is created to satisfy an unmatched name; the portion is reported
// as missing and left alone. All writes are additive.
package resolver

import (
	"log/slog"
	"sort"

	"github.com/Tezigudo/SaladBarOntology/declaration"
	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/ident"
	"github.com/Tezigudo/SaladBarOntology/units"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Relation kinds reported by the resolver.
const (
	RelationIngredient    = "ingredient"
	RelationDressing      = "dressing"
	RelationSubstance     = "substance"
	RelationSubstanceKind = "substance-kind"
	RelationSaladPortion  = "salad-portion"
)

// RelationResult counts the outcome for one relation kind.
type RelationResult struct {
	Resolved      int      `json:"resolved" yaml:"resolved"`
	AlreadyLinked int      `json:"already_linked" yaml:"already_linked"`
	Missing       []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Result is the outcome of ResolveLinks.
type Result struct {
	// Ingredient and Dressing cover portion to base entity links.
	Ingredient RelationResult `json:"ingredient" yaml:"ingredient"`
	Dressing   RelationResult `json:"dressing" yaml:"dressing"`
	// Substance covers entity to SubstancePortion links. Missing lists the
	// ingredients and dressings with no substance data at all.
	Substance RelationResult `json:"substance" yaml:"substance"`
	// SubstanceKind covers SubstancePortion to Substance links.
	SubstanceKind RelationResult `json:"substance_kind" yaml:"substance_kind"`
	// Attributes counts hasAmount/hasUnit values filled in on portions.
	Attributes int         `json:"attributes" yaml:"attributes"`
	Changes    graph.Stats `json:"changes" yaml:"changes"`
}

// ByRelation returns the per-relation results keyed by relation kind.
func (r Result) ByRelation() map[string]RelationResult {
	return map[string]RelationResult{
		RelationIngredient:    r.Ingredient,
		RelationDressing:      r.Dressing,
		RelationSubstance:     r.Substance,
		RelationSubstanceKind: r.SubstanceKind,
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for unresolved references.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver links portions in one graph.
type Resolver struct {
	w      *graph.Writer
	logger *slog.Logger
}

// New returns a Resolver writing through w.
func New(w *graph.Writer, opts ...Option) *Resolver {
	r := &Resolver{w: w, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type portionRelation struct {
	kind         string
	portionClass string
	baseClass    string
	link         string
}

var portionRelations = []portionRelation{
	{RelationIngredient, salad.ClassIngredientPortion, salad.ClassIngredient, salad.PropHasIngredient},
	{RelationDressing, salad.ClassDressingPortion, salad.ClassDressing, salad.PropHasDressing},
}

// ResolveLinks establishes portion, substance portion and substance links.
func (r *Resolver) ResolveLinks() Result {
	before := r.w.Stats()
	ix := graph.NewIndex(r.w.Graph())

	var res Result
	for _, rel := range portionRelations {
		out, filled := r.resolvePortions(ix, rel)
		res.Attributes += filled
		if rel.kind == RelationIngredient {
			res.Ingredient = out
		} else {
			res.Dressing = out
		}
	}
	res.Substance = r.resolveSubstancePortions(ix)
	res.SubstanceKind = r.resolveSubstanceKinds(ix)
	res.Changes = diffStats(before, r.w.Stats())

	r.logger.Info("Resolved links",
		slog.Int("ingredient", res.Ingredient.Resolved),
		slog.Int("dressing", res.Dressing.Resolved),
		slog.Int("substance", res.Substance.Resolved),
		slog.Int("missing", len(res.Ingredient.Missing)+len(res.Dressing.Missing)+len(res.Substance.Missing)))
	return res
}

func (r *Resolver) resolvePortions(ix *graph.Index, rel portionRelation) (RelationResult, int) {
	g := r.w.Graph()
	bases := ix.ByLocalName(rel.baseClass)

	var out RelationResult
	filled := 0
	for _, portion := range ix.InstancesOf(rel.portionClass) {
		local := salad.LocalName(portion)
		parsed := ident.Parse(local)

		if _, linked := g.Object(portion, rel.link); linked {
			out.AlreadyLinked++
		} else if base, ok := bases[parsed.Base]; ok {
			if r.w.AddTripleIfAbsent(portion, rel.link, graph.IRI(base)) {
				out.Resolved++
			}
		} else {
			out.Missing = append(out.Missing, local)
			r.logger.Warn("Unresolved portion",
				slog.String("relation", rel.kind),
				slog.String("portion", local),
				slog.String("base", parsed.Base))
			continue
		}
		filled += r.fillQuantity(portion, parsed)
	}
	return out, filled
}

// fillQuantity writes hasAmount and hasUnit parsed from the portion name when
// the portion does not already carry them.
func (r *Resolver) fillQuantity(portion string, parsed ident.Parsed) int {
	g := r.w.Graph()
	n := 0
	if _, ok := g.Object(portion, salad.PropHasAmount); !ok && parsed.HasAmount {
		if r.w.UpsertTriple(portion, salad.PropHasAmount, graph.Decimal(parsed.Amount)) {
			n++
		}
	}
	if _, ok := g.Object(portion, salad.PropHasUnit); !ok && parsed.Unit != "" {
		unit, recognized := units.NormalizePortionUnit(parsed.Unit)
		if !recognized {
			r.logger.Warn("Unrecognized portion unit",
				slog.String("portion", salad.LocalName(portion)),
				slog.String("unit", parsed.Unit))
		}
		if r.w.UpsertTriple(portion, salad.PropHasUnit, graph.String(unit)) {
			n++
		}
	}
	return n
}

func (r *Resolver) resolveSubstancePortions(ix *graph.Index) RelationResult {
	g := r.w.Graph()
	declared := ix.ByLocalName(salad.ClassSubstancePortion)

	var out RelationResult
	for _, entity := range entities(ix) {
		local := salad.LocalName(entity)
		matched := 0
		for _, s := range salad.Substances() {
			sp, ok := declared[ident.SubstancePortionName(local, s.Name)]
			if !ok {
				continue
			}
			matched++
			if r.w.AddTripleIfAbsent(entity, salad.PropHasSubstancePortion, graph.IRI(sp)) {
				out.Resolved++
			} else {
				out.AlreadyLinked++
			}
		}
		if matched == 0 && len(g.Objects(entity, salad.PropHasSubstancePortion)) == 0 {
			out.Missing = append(out.Missing, local)
			r.logger.Warn("No substance data", slog.String("entity", local))
		}
	}
	return out
}

func (r *Resolver) resolveSubstanceKinds(ix *graph.Index) RelationResult {
	g := r.w.Graph()
	known := ix.ByLocalName(salad.ClassSubstance)

	var out RelationResult
	for _, sp := range ix.InstancesOf(salad.ClassSubstancePortion) {
		if _, ok := g.Object(sp, salad.PropHasSubstance); ok {
			out.AlreadyLinked++
			continue
		}
		local := salad.LocalName(sp)
		substance := salad.SubstanceSuffix(local)
		iri, ok := known[substance]
		if substance == "" || !ok {
			out.Missing = append(out.Missing, local)
			r.logger.Warn("Unresolved substance portion", slog.String("portion", local))
			continue
		}
		if r.w.AddTripleIfAbsent(sp, salad.PropHasSubstance, graph.IRI(iri)) {
			out.Resolved++
		}
	}
	return out
}

// AssignSaladPortions links salads to the portions declared for them. The
// link predicate follows the class of the portion. Pairs naming an unknown
// salad or portion are reported as "Salad -> Portion" and skipped.
func (r *Resolver) AssignSaladPortions(decl *declaration.Set) RelationResult {
	ix := graph.NewIndex(r.w.Graph())
	salads := ix.ByLocalName(salad.ClassSalad)
	ingredientPortions := ix.ByLocalName(salad.ClassIngredientPortion)
	dressingPortions := ix.ByLocalName(salad.ClassDressingPortion)

	var out RelationResult
	for _, pair := range decl.Pairs() {
		s, saladOK := salads[pair.Salad]
		link, portion := salad.PropHasIngredientPortion, ingredientPortions[pair.Portion]
		if portion == "" {
			link, portion = salad.PropHasDressingPortion, dressingPortions[pair.Portion]
		}
		if !saladOK || portion == "" {
			out.Missing = append(out.Missing, pair.Salad+" -> "+pair.Portion)
			r.logger.Warn("Unresolved salad declaration",
				slog.String("salad", pair.Salad),
				slog.String("portion", pair.Portion),
				slog.Bool("salad_found", saladOK),
				slog.Bool("portion_found", portion != ""))
			continue
		}
		if r.w.AddTripleIfAbsent(s, link, graph.IRI(portion)) {
			out.Resolved++
		} else {
			out.AlreadyLinked++
		}
	}
	return out
}

// entities returns the sorted union of ingredients and dressings.
func entities(ix *graph.Index) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, class := range []string{salad.ClassIngredient, salad.ClassDressing} {
		for _, e := range ix.InstancesOf(class) {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	sort.Strings(out)
	return out
}

func diffStats(before, after graph.Stats) graph.Stats {
	return graph.Stats{Added: after.Added - before.Added, Removed: after.Removed - before.Removed}
}
