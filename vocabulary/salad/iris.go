package salad

import "strings"

// Namespace is the base IRI of the Salad Bar ontology. Every class,
// property and individual lives directly under it.
const Namespace = "http://www.semanticweb.org/god/ontologies/2025/3/salad-bar-ontology#"

// Standard vocabulary IRIs used by the ontology file.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"

	RDFType         = RDFNamespace + "type"
	RDFSSubClassOf  = RDFSNamespace + "subClassOf"
	RDFSLabel       = RDFSNamespace + "label"
	OWLClass        = OWLNamespace + "Class"
	OWLNamedIndiv   = OWLNamespace + "NamedIndividual"
	OWLObjectProp   = OWLNamespace + "ObjectProperty"
	RDFSSubProperty = RDFSNamespace + "subPropertyOf"

	XSDDecimal = XSDNamespace + "decimal"
	XSDString  = XSDNamespace + "string"
	XSDDouble  = XSDNamespace + "double"
	XSDFloat   = XSDNamespace + "float"
	XSDInteger = XSDNamespace + "integer"
)

// Class IRIs.
const (
	ClassSalad             = Namespace + "Salad"
	ClassIngredient        = Namespace + "Ingredient"
	ClassIngredientPortion = Namespace + "IngredientPortion"
	ClassDressing          = Namespace + "Dressing"
	ClassDressingPortion   = Namespace + "DressingPortion"
	ClassSubstance         = Namespace + "Substance"
	ClassSubstancePortion  = Namespace + "SubstancePortion"

	// ClassSaladNutrientTotal is the per-salad container of derived totals.
	ClassSaladNutrientTotal = Namespace + "SaladNutrientTotal"

	// ClassSaladSubstance is one derived total of one substance in one salad.
	ClassSaladSubstance = Namespace + "SaladSubstance"
)

// Property IRIs.
const (
	PropHasIngredientPortion = Namespace + "hasIngredientPortion"
	PropHasDressingPortion   = Namespace + "hasDressingPortion"
	PropHasIngredient        = Namespace + "hasIngredient"
	PropHasDressing          = Namespace + "hasDressing"
	PropHasSubstancePortion  = Namespace + "hasSubstancePortion"
	PropHasSubstance         = Namespace + "hasSubstance"
	PropHasAmount            = Namespace + "hasAmount"
	PropHasUnit              = Namespace + "hasUnit"
	PropHasNutrient          = Namespace + "hasNutrient"

	// PropHasTotalSubstance is the generic total link. Older files link
	// through it; the aggregator only writes the specific hasTotal<X>
	// subproperties and removes stale generic links.
	PropHasTotalSubstance = Namespace + "hasTotalSubstance"

	totalPropPrefix = Namespace + "hasTotal"
)

// IRI returns the ontology IRI for a local name. Names that already look
// like absolute IRIs are returned unchanged.
func IRI(local string) string {
	if strings.Contains(local, "://") {
		return local
	}
	return Namespace + local
}

// LocalName strips the ontology namespace, or for foreign IRIs everything up
// to the last '#' or '/'.
func LocalName(iri string) string {
	if rest, ok := strings.CutPrefix(iri, Namespace); ok {
		return rest
	}
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	return iri
}

// NutritionNodeIRI is the SaladNutrientTotal individual of a salad.
func NutritionNodeIRI(salad string) string {
	return salad + "Nutrition"
}

// SaladSubstanceIRI is the SaladSubstance individual holding the total of
// substance in salad. Hyphens in the substance name are kept.
func SaladSubstanceIRI(salad, substance string) string {
	return salad + substance
}

// TotalPropertyIRI returns the hasTotal<Substance> property for a substance
// name. Hyphens become underscores, so Omega-3 maps to hasTotalOmega_3.
func TotalPropertyIRI(substance string) string {
	return totalPropPrefix + strings.ReplaceAll(substance, "-", "_")
}

// IsTotalProperty reports whether iri is hasTotalSubstance or one of its
// specific hasTotal<Substance> subproperties.
func IsTotalProperty(iri string) bool {
	return strings.HasPrefix(iri, totalPropPrefix)
}
