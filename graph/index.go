package graph

import (
	"sort"

	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Index answers class-membership questions with subclass-transitive
// lookups. The subclass hierarchy is captured when the index is built;
// instance lookups read the live graph.
type Index struct {
	g          *Graph
	subclasses map[string][]string
}

// NewIndex builds the subclass hierarchy of g.
func NewIndex(g *Graph) *Index {
	ix := &Index{g: g, subclasses: make(map[string][]string)}
	for _, t := range g.Match("", salad.RDFSSubClassOf, nil) {
		if !t.Object.IsIRI() {
			continue
		}
		ix.subclasses[t.Object.Value] = append(ix.subclasses[t.Object.Value], t.Subject)
	}
	return ix
}

// Graph returns the indexed graph.
func (ix *Index) Graph() *Graph { return ix.g }

// ClassClosure returns class and every direct or indirect subclass, sorted.
// Cycles in the hierarchy are tolerated.
func (ix *Index) ClassClosure(class string) []string {
	seen := map[string]struct{}{class: {}}
	queue := []string{class}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, sub := range ix.subclasses[c] {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			queue = append(queue, sub)
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// InstancesOf returns the sorted individuals typed with class or one of its
// subclasses.
func (ix *Index) InstancesOf(class string) []string {
	set := make(map[string]struct{})
	for _, c := range ix.ClassClosure(class) {
		for _, s := range ix.g.Subjects(salad.RDFType, IRI(c)) {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsInstanceOf reports whether subject is typed with class or a subclass.
func (ix *Index) IsInstanceOf(subject, class string) bool {
	for _, c := range ix.ClassClosure(class) {
		if ix.g.Has(Triple{Subject: subject, Predicate: salad.RDFType, Object: IRI(c)}) {
			return true
		}
	}
	return false
}

// ByLocalName maps the local names of the instances of class to their IRIs.
func (ix *Index) ByLocalName(class string) map[string]string {
	out := make(map[string]string)
	for _, s := range ix.InstancesOf(class) {
		out[salad.LocalName(s)] = s
	}
	return out
}
