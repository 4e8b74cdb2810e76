package aggregate

import (
	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

type portion struct {
	name      string
	base      string
	amount    float64
	hasAmount bool
	unit      string
}

type content struct {
	name      string
	substance string
	amount    float64
	hasAmount bool
	unit      string
}

// composition caches the substance content of each ingredient and dressing
// so entities shared by many salads are read once per run.
type composition struct {
	g        *graph.Graph
	contents map[string][]content
}

func newComposition(g *graph.Graph) *composition {
	return &composition{g: g, contents: make(map[string][]content)}
}

// portionsOf returns the ingredient portions then the dressing portions of
// a salad, each group sorted.
func (c *composition) portionsOf(saladIRI string) []portion {
	var out []portion
	for _, rel := range []struct{ owns, base string }{
		{salad.PropHasIngredientPortion, salad.PropHasIngredient},
		{salad.PropHasDressingPortion, salad.PropHasDressing},
	} {
		for _, obj := range c.g.Objects(saladIRI, rel.owns) {
			if !obj.IsIRI() {
				continue
			}
			p := portion{name: salad.LocalName(obj.Value)}
			if base, ok := c.g.Object(obj.Value, rel.base); ok && base.IsIRI() {
				p.base = base.Value
			}
			p.amount, p.hasAmount = c.number(obj.Value)
			p.unit = c.text(obj.Value, salad.PropHasUnit)
			out = append(out, p)
		}
	}
	return out
}

func (c *composition) contentsOf(entity string) []content {
	if cached, ok := c.contents[entity]; ok {
		return cached
	}
	var out []content
	for _, obj := range c.g.Objects(entity, salad.PropHasSubstancePortion) {
		if !obj.IsIRI() {
			continue
		}
		ct := content{name: salad.LocalName(obj.Value)}
		if s, ok := c.g.Object(obj.Value, salad.PropHasSubstance); ok && s.IsIRI() {
			ct.substance = salad.LocalName(s.Value)
		}
		ct.amount, ct.hasAmount = c.number(obj.Value)
		ct.unit = c.text(obj.Value, salad.PropHasUnit)
		out = append(out, ct)
	}
	c.contents[entity] = out
	return out
}

func (c *composition) number(subject string) (float64, bool) {
	for _, o := range c.g.Objects(subject, salad.PropHasAmount) {
		if v, ok := o.Float(); ok {
			return v, true
		}
	}
	return 0, false
}

func (c *composition) text(subject, predicate string) string {
	if o, ok := c.g.Object(subject, predicate); ok {
		return o.Value
	}
	return ""
}
