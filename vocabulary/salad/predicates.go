package salad

import (
	"strings"

	"github.com/c360studio/semstreams/vocabulary"
)

// Composition predicates link salads to portions and portions to their base
// ingredient or dressing.
const (
	// SaladIngredientPortion links a salad to an IngredientPortion.
	SaladIngredientPortion = "salad.composition.ingredient_portion"

	// SaladDressingPortion links a salad to a DressingPortion.
	SaladDressingPortion = "salad.composition.dressing_portion"

	// PortionIngredient links an IngredientPortion to its Ingredient.
	PortionIngredient = "salad.portion.ingredient"

	// PortionDressing links a DressingPortion to its Dressing.
	PortionDressing = "salad.portion.dressing"
)

// Content predicates describe what an ingredient or dressing contains.
const (
	// ContentSubstancePortion links an Ingredient or Dressing to a SubstancePortion.
	ContentSubstancePortion = "salad.content.substance_portion"

	// ContentSubstance links a SubstancePortion to its Substance.
	ContentSubstance = "salad.content.substance"
)

// Quantity predicates carry amounts and units on portions and totals.
const (
	QuantityAmount = "salad.quantity.amount"
	QuantityUnit   = "salad.quantity.unit"
)

// Nutrition predicates carry the derived per-salad totals.
const (
	// NutritionNutrient links a salad to its SaladNutrientTotal.
	NutritionNutrient = "salad.nutrition.nutrient"

	// NutritionTotal is the generic total link (hasTotalSubstance).
	NutritionTotal = "salad.nutrition.total"

	nutritionTotalPrefix = "salad.nutrition.total_"
)

// Structural predicates. TypePredicate is owned by semstreams and only
// mapped here; the schema predicates are registered by this package.
const (
	TypePredicate          = "rdf.syntax.type"
	SubClassOfPredicate    = "salad.schema.subclass_of"
	LabelPredicate         = "salad.schema.label"
	SubPropertyOfPredicate = "salad.schema.subproperty_of"
)

// TotalPredicate returns the dotted predicate of hasTotal<Substance>.
func TotalPredicate(substance string) string {
	return nutritionTotalPrefix + strings.ToLower(strings.ReplaceAll(substance, "-", "_"))
}

var byIRI = map[string]string{}

func register(name, description, dataType, iri string) {
	vocabulary.Register(name,
		vocabulary.WithDescription(description),
		vocabulary.WithDataType(dataType),
		vocabulary.WithIRI(iri))
	byIRI[iri] = name
}

// PredicateForIRI returns the dotted predicate registered for a property IRI.
func PredicateForIRI(iri string) (string, bool) {
	name, ok := byIRI[iri]
	return name, ok
}

func init() {
	registerStructuralPredicates()
	registerCompositionPredicates()
	registerNutritionPredicates()
}

func registerStructuralPredicates() {
	byIRI[RDFType] = TypePredicate
	register(SubClassOfPredicate, "Superclass", "entity_id", RDFSSubClassOf)
	register(LabelPredicate, "Human readable label", "string", RDFSLabel)
	register(SubPropertyOfPredicate, "Superproperty", "entity_id", RDFSSubProperty)
}

func registerCompositionPredicates() {
	register(SaladIngredientPortion, "Ingredient portion of a salad", "entity_id", PropHasIngredientPortion)
	register(SaladDressingPortion, "Dressing portion of a salad", "entity_id", PropHasDressingPortion)
	register(PortionIngredient, "Ingredient measured by a portion", "entity_id", PropHasIngredient)
	register(PortionDressing, "Dressing measured by a portion", "entity_id", PropHasDressing)
	register(ContentSubstancePortion, "Substance content per 100 units", "entity_id", PropHasSubstancePortion)
	register(ContentSubstance, "Substance a portion measures", "entity_id", PropHasSubstance)
	register(QuantityAmount, "Numeric amount", "float", PropHasAmount)
	register(QuantityUnit, "Unit of the amount", "string", PropHasUnit)
}

func registerNutritionPredicates() {
	register(NutritionNutrient, "Derived nutrient total container", "entity_id", PropHasNutrient)
	register(NutritionTotal, "Derived substance total", "entity_id", PropHasTotalSubstance)
	for _, s := range Substances() {
		register(TotalPredicate(s.Name), "Derived total of "+s.Name, "entity_id", s.TotalProperty())
	}
}
