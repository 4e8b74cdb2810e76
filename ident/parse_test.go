package ident

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		base      string
		amount    float64
		hasAmount bool
		unit      string
	}{
		{"grams", "Tomato300g", "Tomato", 300, true, "g"},
		{"millilitres", "OliveOil90ml", "OliveOil", 90, true, "ml"},
		{"decimal", "Feta12.5g", "Feta", 12.5, true, "g"},
		{"bare substance", "Iron", "Iron", 0, false, ""},
		{"digits without unit", "Portion42", "Portion", 42, true, ""},
		{"embedded digits take rightmost run", "Vitamin2Mix150g", "Vitamin2Mix", 150, true, "g"},
		{"zero width space", "Tomato\u200b300g", "Tomato", 300, true, "g"},
		{"nbsp and spaces", "Olive Oil\u00a090 ml", "OliveOil", 90, true, "ml"},
		{"mixed case unit", "Lemon20ML", "Lemon", 20, true, "ML"},
		{"non-ascii unit letters", "Saffron5μg", "Saffron", 5, true, "μg"},
		{"byte order mark", "\ufeffFeta50g", "Feta", 50, true, "g"},
		{"trailing dot is not numeric", "Odd3.", "Odd3.", 0, false, ""},
		{"empty", "", "", 0, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			assert.Equal(t, tt.base, got.Base)
			assert.Equal(t, tt.hasAmount, got.HasAmount)
			assert.Equal(t, tt.amount, got.Amount)
			assert.Equal(t, tt.unit, got.Unit)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	bases := []string{"Tomato", "RedOnion", "Cucumber", "BalsamicVinegar", "A"}
	amounts := []float64{0, 1, 50, 300, 12.5, 0.25}
	units := []string{"g", "ml", "kg", ""}

	for _, base := range bases {
		for _, amount := range amounts {
			for _, unit := range units {
				name := base + strconv.FormatFloat(amount, 'f', -1, 64) + unit
				got := Parse(name)
				if got.Base != base || !got.HasAmount || got.Amount != amount || got.Unit != unit {
					t.Errorf("Parse(%q) = %+v", name, got)
				}
			}
		}
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "GreekSalad", Clean(" Greek\u200bSalad\u00a0"))
	assert.Equal(t, "Tomato", Clean("Tomato"))
	assert.Equal(t, "OliveOil", Clean("\ufeffOlive\u200c\u200dOil\u2060"))
}

func TestSubstancePortionName(t *testing.T) {
	assert.Equal(t, "TomatoVitaminC", SubstancePortionName("Tomato", "VitaminC"))
	assert.Equal(t, "OliveOilExtraVirginFat", SubstancePortionName("Olive Oil (Extra/Virgin)", "Fat"))
	assert.Equal(t, "WalnutOmega-3", SubstancePortionName("Walnut", "Omega-3"))
}
