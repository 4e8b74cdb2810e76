// Package salad provides the vocabulary of the Salad Bar ontology.
//
// The ontology models salads composed of ingredient and dressing portions,
// the per-100 substance content of each ingredient and dressing, and the
// derived per-salad nutrient totals. Terms are exposed two ways:
//   - Full IRIs (ClassSalad, PropHasAmount, ...) used by the graph store and
//     by every component that reads or writes triples.
//   - Dotted predicates (salad.portion.ingredient, ...) registered with the
//     semstreams vocabulary registry so that RDF export can map between the
//     two forms.
//
// # Composition Chain
//
//	Salad --hasIngredientPortion--> IngredientPortion --hasIngredient--> Ingredient
//	Salad --hasDressingPortion----> DressingPortion  --hasDressing----> Dressing
//	Ingredient|Dressing --hasSubstancePortion--> SubstancePortion --hasSubstance--> Substance
//
// # Derived Data
//
// The aggregator materializes, for every salad S and substance X:
//
//	S --hasNutrient--> SNutrition (SaladNutrientTotal)
//	SNutrition --hasTotalX--> SX (SaladSubstance, hasAmount, hasUnit)
//
// # Substances
//
// The closed substance enumeration lives in Substances. Each entry carries
// the expected per-100 unit used for normalization and auditing and the
// display unit of the aggregated total.
package salad
