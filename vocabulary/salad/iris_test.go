package salad_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

func TestTotalPropertyIRI(t *testing.T) {
	assert.Equal(t, salad.Namespace+"hasTotalVitaminC", salad.TotalPropertyIRI("VitaminC"))
	assert.Equal(t, salad.Namespace+"hasTotalOmega_3", salad.TotalPropertyIRI("Omega-3"))
	assert.True(t, salad.IsTotalProperty(salad.TotalPropertyIRI("Iron")))
	assert.True(t, salad.IsTotalProperty(salad.PropHasTotalSubstance))
	assert.False(t, salad.IsTotalProperty(salad.PropHasNutrient))
}

func TestDerivedNodeIRIs(t *testing.T) {
	greek := salad.IRI("GreekSalad")
	assert.Equal(t, salad.Namespace+"GreekSaladNutrition", salad.NutritionNodeIRI(greek))
	assert.Equal(t, salad.Namespace+"GreekSaladOmega-3", salad.SaladSubstanceIRI(greek, "Omega-3"))
}

func TestLocalName(t *testing.T) {
	tests := []struct {
		iri, want string
	}{
		{salad.Namespace + "Tomato300g", "Tomato300g"},
		{salad.RDFType, "type"},
		{"http://example.org/things/Widget", "Widget"},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, salad.LocalName(tc.iri))
		})
	}
	assert.Equal(t, salad.Namespace+"Tomato", salad.IRI("Tomato"))
	assert.Equal(t, "http://x.org/a#b", salad.IRI("http://x.org/a#b"))
}

func TestSubstanceTable(t *testing.T) {
	names := salad.SubstanceNames()
	assert.Len(t, names, 17)
	assert.IsIncreasing(t, names)

	energy, ok := salad.LookupSubstance("FoodEnergy")
	assert.True(t, ok)
	assert.Equal(t, "cal/100g", energy.ExpectedUnit)
	assert.Equal(t, "cal", energy.DisplayUnit)

	iron, ok := salad.LookupSubstance("Iron")
	assert.True(t, ok)
	assert.Equal(t, "mg/100g", iron.ExpectedUnit)
	assert.Equal(t, "mg", iron.DisplayUnit)
	assert.Equal(t, salad.Namespace+"Iron", iron.IRI())

	_, ok = salad.LookupSubstance("Unobtainium")
	assert.False(t, ok)
}

func TestSubstanceSuffix(t *testing.T) {
	tests := map[string]string{
		"TomatoVitaminC":    "VitaminC",
		"SalmonOmega-3":     "Omega-3",
		"LentilIron":        "Iron",
		"CheeseFoodEnergy":  "FoodEnergy",
		"VitaminC":          "",
		"TomatoUnknownBits": "",
	}
	for local, want := range tests {
		assert.Equal(t, want, salad.SubstanceSuffix(local), local)
	}
}
