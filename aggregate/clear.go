package aggregate

import (
	"log/slog"

	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// ClearResult counts what ClearDerived removed.
type ClearResult struct {
	Nodes   int `json:"nodes" yaml:"nodes"`
	Triples int `json:"triples" yaml:"triples"`
}

// ClearDerived removes every SaladSubstance and SaladNutrientTotal node with
// all of their triples, and any remaining hasTotal or hasNutrient link.
func (a *Aggregator) ClearDerived() ClearResult {
	g := a.w.Graph()
	ix := graph.NewIndex(g)

	var res ClearResult
	for _, class := range []string{salad.ClassSaladSubstance, salad.ClassSaladNutrientTotal} {
		for _, node := range ix.InstancesOf(class) {
			res.Triples += a.w.RetractNode(node)
			res.Nodes++
		}
	}
	for _, t := range g.Triples() {
		if salad.IsTotalProperty(t.Predicate) || t.Predicate == salad.PropHasNutrient {
			obj := t.Object
			res.Triples += a.w.Retract(t.Subject, t.Predicate, &obj)
		}
	}
	a.logger.Info("Cleared derived totals", slog.Int("nodes", res.Nodes), slog.Int("triples", res.Triples))
	return res
}
