// Package export serializes salad bar graphs for downstream consumers
// through the semstreams RDF serializer.
package export

import (
	"fmt"

	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Profile determines which part of the graph is exported.
type Profile string

const (
	// ProfileFull exports every triple with a registered predicate.
	ProfileFull Profile = "full"

	// ProfileComposition exports salads, portions, ingredients, dressings
	// and substance data, without the ontology schema or derived totals.
	ProfileComposition Profile = "composition"

	// ProfileDerived exports only the derived nutrient totals.
	ProfileDerived Profile = "derived"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	// Name is the profile identifier.
	Name Profile

	// Description describes the profile.
	Description string

	// IncludeSchema includes class and property declarations.
	IncludeSchema bool

	// IncludeComposition includes declared individuals and their links.
	IncludeComposition bool

	// IncludeDerived includes SaladNutrientTotal and SaladSubstance data.
	IncludeDerived bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileFull: {
		Name:               ProfileFull,
		Description:        "Schema, composition and derived totals",
		IncludeSchema:      true,
		IncludeComposition: true,
		IncludeDerived:     true,
	},
	ProfileComposition: {
		Name:               ProfileComposition,
		Description:        "Declared individuals and resolved links",
		IncludeComposition: true,
	},
	ProfileDerived: {
		Name:           ProfileDerived,
		Description:    "Derived per-salad nutrient totals",
		IncludeDerived: true,
	},
}

// ParseProfile validates a profile name. The empty string selects
// ProfileFull.
func ParseProfile(s string) (Profile, error) {
	if s == "" {
		return ProfileFull, nil
	}
	if _, ok := Profiles[Profile(s)]; !ok {
		return "", fmt.Errorf("unknown export profile %q", s)
	}
	return Profile(s), nil
}

// GetProfileConfig returns the configuration for a profile.
// Unknown profiles fall back to ProfileFull.
func GetProfileConfig(p Profile) ProfileConfig {
	if cfg, ok := Profiles[p]; ok {
		return cfg
	}
	return Profiles[ProfileFull]
}

// section classifies a triple as schema, composition or derived data.
type section int

const (
	sectionSchema section = iota
	sectionComposition
	sectionDerived
)

// classifier assigns each subject of one graph to a section.
type classifier struct {
	g       *graph.Graph
	derived map[string]struct{}
}

func newClassifier(g *graph.Graph) *classifier {
	c := &classifier{g: g, derived: make(map[string]struct{})}
	for _, class := range []string{salad.ClassSaladSubstance, salad.ClassSaladNutrientTotal} {
		for _, s := range g.Subjects(salad.RDFType, graph.IRI(class)) {
			c.derived[s] = struct{}{}
		}
	}
	return c
}

func (c *classifier) section(t graph.Triple) section {
	if _, ok := c.derived[t.Subject]; ok {
		return sectionDerived
	}
	if t.Predicate == salad.PropHasNutrient || salad.IsTotalProperty(t.Predicate) {
		return sectionDerived
	}
	if c.isSchema(t.Subject) {
		return sectionSchema
	}
	return sectionComposition
}

func (c *classifier) isSchema(subject string) bool {
	if graph.IsBlankSubject(subject) {
		return true
	}
	for _, o := range c.g.Objects(subject, salad.RDFType) {
		switch o.Value {
		case salad.OWLClass, salad.OWLObjectProp, salad.OWLNamespace + "DatatypeProperty",
			salad.OWLNamespace + "Ontology", salad.RDFNamespace + "Property":
			return true
		}
	}
	return false
}

func (cfg ProfileConfig) includes(s section) bool {
	switch s {
	case sectionSchema:
		return cfg.IncludeSchema
	case sectionComposition:
		return cfg.IncludeComposition
	default:
		return cfg.IncludeDerived
	}
}
