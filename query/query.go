// Package query answers the competency questions of the salad bar
// ontology over a resolved and aggregated graph.
package query

import (
	"sort"

	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Level classifies a salad total against a threshold.
type Level string

const (
	LevelHigh   Level = "High"
	LevelNormal Level = "Normal"
	LevelLow    Level = "Low"
)

// Threshold bounds the normal range of a salad total. Totals above High are
// high, totals below Low are low.
type Threshold struct {
	High float64 `yaml:"high" json:"high"`
	Low  float64 `yaml:"low" json:"low"`
}

// DefaultThresholds returns the per-salad ranges used when none are
// configured.
func DefaultThresholds() map[string]Threshold {
	return map[string]Threshold{
		"FoodEnergy": {High: 600, Low: 200},
		"Sodium":     {High: 1475, Low: 400},
		"VitaminC":   {High: 33, Low: 23},
		"Iron":       {High: 4, Low: 1},
		"Calcium":    {High: 500, Low: 300},
		"Potassium":  {High: 1133, Low: 866},
		"VitaminA":   {High: 1, Low: 0.8},
	}
}

// Classify places amount relative to t.
func (t Threshold) Classify(amount float64) Level {
	switch {
	case amount > t.High:
		return LevelHigh
	case amount < t.Low:
		return LevelLow
	default:
		return LevelNormal
	}
}

// SaladLevel is one classified total.
type SaladLevel struct {
	Salad     string  `json:"salad" yaml:"salad"`
	Substance string  `json:"substance" yaml:"substance"`
	Amount    float64 `json:"amount" yaml:"amount"`
	Unit      string  `json:"unit" yaml:"unit"`
	Level     Level   `json:"level" yaml:"level"`
}

// Similarity states that every substance of Subset is also a substance of
// Superset.
type Similarity struct {
	Subset   string `json:"subset" yaml:"subset"`
	Superset string `json:"superset" yaml:"superset"`
}

// SubstancesBySalad lists, per salad, the substances contributed by any of
// its linked portions.
func SubstancesBySalad(g *graph.Graph) map[string][]string {
	ix := graph.NewIndex(g)
	out := make(map[string][]string)
	for _, s := range ix.InstancesOf(salad.ClassSalad) {
		set := make(map[string]struct{})
		for _, rel := range [][2]string{
			{salad.PropHasIngredientPortion, salad.PropHasIngredient},
			{salad.PropHasDressingPortion, salad.PropHasDressing},
		} {
			for _, portion := range g.Objects(s, rel[0]) {
				for _, base := range g.Objects(portion.Value, rel[1]) {
					for name := range substancesOf(g, base.Value) {
						set[name] = struct{}{}
					}
				}
			}
		}
		out[salad.LocalName(s)] = sortedSet(set)
	}
	return out
}

// Levels classifies the derived totals of every salad for the substances
// that have a threshold. Salads without derived totals are absent.
func Levels(g *graph.Graph, thresholds map[string]Threshold) []SaladLevel {
	ix := graph.NewIndex(g)
	var out []SaladLevel
	for _, s := range ix.InstancesOf(salad.ClassSalad) {
		for _, nutrition := range g.Objects(s, salad.PropHasNutrient) {
			for _, name := range sortedKeys(thresholds) {
				node, ok := g.Object(nutrition.Value, salad.TotalPropertyIRI(name))
				if !ok {
					continue
				}
				amt, ok := g.Object(node.Value, salad.PropHasAmount)
				if !ok {
					continue
				}
				v, ok := amt.Float()
				if !ok {
					continue
				}
				unit := ""
				if u, ok := g.Object(node.Value, salad.PropHasUnit); ok {
					unit = u.Value
				}
				out = append(out, SaladLevel{
					Salad:     salad.LocalName(s),
					Substance: name,
					Amount:    v,
					Unit:      unit,
					Level:     thresholds[name].Classify(v),
				})
			}
		}
	}
	return out
}

// SimilarEntities returns the ordered pairs of ingredients or dressings
// whose substance set is contained in another's. Entities without any
// substance data are ignored.
func SimilarEntities(g *graph.Graph) []Similarity {
	ix := graph.NewIndex(g)
	sets := make(map[string]map[string]struct{})
	for _, class := range []string{salad.ClassIngredient, salad.ClassDressing} {
		for _, e := range ix.InstancesOf(class) {
			if set := substancesOf(g, e); len(set) > 0 {
				sets[salad.LocalName(e)] = set
			}
		}
	}

	names := sortedKeys(sets)
	var out []Similarity
	for _, a := range names {
		for _, b := range names {
			if a != b && subset(sets[a], sets[b]) {
				out = append(out, Similarity{Subset: a, Superset: b})
			}
		}
	}
	return out
}

func substancesOf(g *graph.Graph, entity string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, sp := range g.Objects(entity, salad.PropHasSubstancePortion) {
		for _, s := range g.Objects(sp.Value, salad.PropHasSubstance) {
			set[salad.LocalName(s.Value)] = struct{}{}
		}
	}
	return set
}

func subset(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func sortedSet(set map[string]struct{}) []string {
	return sortedKeys(set)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
