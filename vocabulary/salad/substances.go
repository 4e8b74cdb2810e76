package salad

import (
	"sort"
	"strings"
)

// Per-100 units recognized as canonical.
const (
	UnitMilligramPer100g = "mg/100g"
	UnitCaloriePer100g   = "cal/100g"
)

// Substance describes one member of the closed substance enumeration.
type Substance struct {
	// Name is the local name of the Substance individual, e.g. "VitaminC".
	Name string
	// ExpectedUnit is the per-100 unit every SubstancePortion of this
	// substance should carry after normalization.
	ExpectedUnit string
	// DisplayUnit is the unit written on the aggregated SaladSubstance.
	DisplayUnit string
}

// IRI returns the Substance individual IRI.
func (s Substance) IRI() string { return Namespace + s.Name }

// TotalProperty returns the hasTotal<Substance> property IRI.
func (s Substance) TotalProperty() string { return TotalPropertyIRI(s.Name) }

var substances = buildSubstances()

func buildSubstances() map[string]Substance {
	m := make(map[string]Substance)
	for _, name := range []string{
		"Calcium", "Carbohydrate", "Cholesterol", "Fat", "Iron", "Lutein",
		"Omega-3", "Potassium", "Protein", "Sodium", "VitaminA", "VitaminB9",
		"VitaminC", "VitaminE", "Zeaxanthin", "Zinc",
	} {
		m[name] = Substance{Name: name, ExpectedUnit: UnitMilligramPer100g, DisplayUnit: "mg"}
	}
	m["FoodEnergy"] = Substance{Name: "FoodEnergy", ExpectedUnit: UnitCaloriePer100g, DisplayUnit: "cal"}
	return m
}

// LookupSubstance returns the enumeration entry for a substance name.
func LookupSubstance(name string) (Substance, bool) {
	s, ok := substances[name]
	return s, ok
}

// Substances returns the enumeration sorted by name.
func Substances() []Substance {
	out := make([]Substance, 0, len(substances))
	for _, s := range substances {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SubstanceNames returns the sorted substance names.
func SubstanceNames() []string {
	all := Substances()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// SubstanceSuffix returns the longest substance name that local ends with,
// or "" when none matches. The name alone, without a prefix, does not match.
func SubstanceSuffix(local string) string {
	best := ""
	for name := range substances {
		if len(local) > len(name) && strings.HasSuffix(local, name) && len(name) > len(best) {
			best = name
		}
	}
	return best
}
