package pipeline

import (
	"log/slog"

	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/units"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// RepairResult reports what the unit repair stage rewrote.
type RepairResult struct {
	SubstancePortions int         `json:"substance_portions" yaml:"substance_portions"`
	Portions          int         `json:"portions" yaml:"portions"`
	Unrecognized      []string    `json:"unrecognized,omitempty" yaml:"unrecognized,omitempty"`
	Changes           graph.Stats `json:"changes" yaml:"changes"`
}

// Repair rewrites substance portion quantities and portion units to their
// canonical form. Values already canonical are left alone, so a second
// call changes nothing.
func (p *Pipeline) Repair() RepairResult {
	before := p.w.Stats()
	ix := graph.NewIndex(p.g)

	var res RepairResult
	for _, sp := range ix.InstancesOf(salad.ClassSubstancePortion) {
		switch p.repairSubstancePortion(sp) {
		case repaired:
			res.SubstancePortions++
		case unrecognized:
			res.Unrecognized = append(res.Unrecognized, salad.LocalName(sp))
		}
	}
	for _, class := range []string{salad.ClassIngredientPortion, salad.ClassDressingPortion} {
		for _, portion := range ix.InstancesOf(class) {
			if p.repairPortionUnit(portion) {
				res.Portions++
			}
		}
	}
	res.Changes = diff(before, p.w.Stats())

	p.logger.Info("Repaired units",
		slog.Int("substance_portions", res.SubstancePortions),
		slog.Int("portions", res.Portions),
		slog.Int("unrecognized", len(res.Unrecognized)))
	return res
}

type repairOutcome int

const (
	unchanged repairOutcome = iota
	repaired
	unrecognized
)

func (p *Pipeline) repairSubstancePortion(sp string) repairOutcome {
	unitTerm, ok := p.g.Object(sp, salad.PropHasUnit)
	if !ok || units.IsCanonicalSubstanceUnit(unitTerm.Value) {
		return unchanged
	}
	amountTerm, ok := p.g.Object(sp, salad.PropHasAmount)
	if !ok {
		return unchanged
	}
	amount, ok := amountTerm.Float()
	if !ok {
		return unchanged
	}

	local := salad.LocalName(sp)
	substance := salad.SubstanceSuffix(local)
	if linked, ok := p.g.Object(sp, salad.PropHasSubstance); ok {
		substance = salad.LocalName(linked.Value)
	}

	q, recognized := units.Normalize(substance, units.Quantity{Amount: amount, Unit: unitTerm.Value})
	if !recognized {
		p.logger.Warn("Unrecognized substance unit",
			slog.String("portion", local),
			slog.String("substance", substance),
			slog.String("unit", unitTerm.Value))
		return unrecognized
	}
	if q.Unit == unitTerm.Value && q.Amount == amount {
		return unchanged
	}

	p.w.UpsertTriple(sp, salad.PropHasAmount, graph.Decimal(q.Amount))
	p.w.UpsertTriple(sp, salad.PropHasUnit, graph.String(q.Unit))
	p.logger.Debug("Normalized substance portion",
		slog.String("portion", local),
		slog.String("from", unitTerm.Value),
		slog.String("to", q.Unit))
	return repaired
}

func (p *Pipeline) repairPortionUnit(portion string) bool {
	unitTerm, ok := p.g.Object(portion, salad.PropHasUnit)
	if !ok {
		return false
	}
	canonical, recognized := units.NormalizePortionUnit(unitTerm.Value)
	if !recognized || canonical == unitTerm.Value {
		return false
	}
	return p.w.UpsertTriple(portion, salad.PropHasUnit, graph.String(canonical))
}
