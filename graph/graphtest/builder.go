// Package graphtest builds salad bar graphs for tests.
package graphtest

import (
	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/ident"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Builder accumulates triples using ontology local names.
type Builder struct {
	g *graph.Graph
}

// New returns a builder seeded with the ontology class hierarchy and the
// Substance individuals.
func New() *Builder {
	b := &Builder{g: graph.New()}
	for _, c := range []string{
		salad.ClassSalad, salad.ClassIngredient, salad.ClassIngredientPortion,
		salad.ClassDressing, salad.ClassDressingPortion, salad.ClassSubstance,
		salad.ClassSubstancePortion, salad.ClassSaladNutrientTotal, salad.ClassSaladSubstance,
	} {
		b.g.Add(graph.Triple{Subject: c, Predicate: salad.RDFType, Object: graph.IRI(salad.OWLClass)})
	}
	for _, s := range salad.Substances() {
		b.Individual(s.Name, "Substance")
	}
	return b
}

// Graph returns the built graph.
func (b *Builder) Graph() *graph.Graph { return b.g }

// Add adds a raw triple with IRI object, all names local.
func (b *Builder) Add(s, p, o string) *Builder {
	b.g.Add(graph.Triple{Subject: salad.IRI(s), Predicate: salad.IRI(p), Object: graph.IRI(salad.IRI(o))})
	return b
}

// Literal adds a literal-valued triple.
func (b *Builder) Literal(s, p string, o graph.Term) *Builder {
	b.g.Add(graph.Triple{Subject: salad.IRI(s), Predicate: salad.IRI(p), Object: o})
	return b
}

// Subclass declares child rdfs:subClassOf parent.
func (b *Builder) Subclass(child, parent string) *Builder {
	b.g.Add(graph.Triple{Subject: salad.IRI(child), Predicate: salad.RDFSSubClassOf, Object: graph.IRI(salad.IRI(parent))})
	return b
}

// Individual declares name rdf:type class.
func (b *Builder) Individual(name, class string) *Builder {
	b.g.Add(graph.Triple{Subject: salad.IRI(name), Predicate: salad.RDFType, Object: graph.IRI(salad.IRI(class))})
	return b
}

// Salad declares a salad owning the given portions. Portions must be
// declared separately.
func (b *Builder) Salad(name string, ingredientPortions, dressingPortions []string) *Builder {
	b.Individual(name, "Salad")
	for _, p := range ingredientPortions {
		b.Add(name, "hasIngredientPortion", p)
	}
	for _, p := range dressingPortions {
		b.Add(name, "hasDressingPortion", p)
	}
	return b
}

// SubstancePortion declares the SubstancePortion entity+substance with a
// per-100 amount and unit, without linking it.
func (b *Builder) SubstancePortion(entity, substance string, amount float64, unit string) *Builder {
	name := ident.SubstancePortionName(entity, substance)
	b.Individual(name, "SubstancePortion")
	b.Literal(name, "hasAmount", graph.Decimal(amount))
	b.Literal(name, "hasUnit", graph.String(unit))
	return b
}

// LinkSubstancePortion links entity to its SubstancePortion for substance
// and the portion to the Substance, as a resolved graph would.
func (b *Builder) LinkSubstancePortion(entity, substance string) *Builder {
	name := ident.SubstancePortionName(entity, substance)
	b.Add(entity, "hasSubstancePortion", name)
	b.Add(name, "hasSubstance", substance)
	return b
}

// GreekSalad returns the unresolved reference scenario: GreekSalad owns
// Tomato300g and OliveOil90ml, Tomato carries 20 mg/100g VitaminC and
// OliveOil carries only Fat.
func GreekSalad() *Builder {
	return New().
		Individual("Tomato", "Ingredient").
		Individual("OliveOil", "Dressing").
		Individual("Tomato300g", "IngredientPortion").
		Individual("OliveOil90ml", "DressingPortion").
		Salad("GreekSalad", []string{"Tomato300g"}, []string{"OliveOil90ml"}).
		SubstancePortion("Tomato", "VitaminC", 20, "mg/100g").
		SubstancePortion("OliveOil", "Fat", 100, "g/100g")
}
