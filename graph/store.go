// Package graph is the in-memory triple store the salad bar engine runs
// against, together with the upsert layer every mutating component writes
// through and the RDF codec used at the load and save boundaries.
//
// A Graph is not safe for concurrent use. A run loads one graph, passes it
// through the pipeline stages in sequence and saves it once at the end.
package graph

import "sort"

// Graph holds triples indexed by subject and by predicate.
type Graph struct {
	// subject -> predicate -> object key -> object
	spo map[string]map[string]map[string]Term
	// predicate -> object key -> subjects
	pos  map[string]map[string]map[string]struct{}
	size int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		spo: make(map[string]map[string]map[string]Term),
		pos: make(map[string]map[string]map[string]struct{}),
	}
}

// Len returns the number of triples.
func (g *Graph) Len() int { return g.size }

// Add inserts t and reports whether the graph changed.
func (g *Graph) Add(t Triple) bool {
	preds, ok := g.spo[t.Subject]
	if !ok {
		preds = make(map[string]map[string]Term)
		g.spo[t.Subject] = preds
	}
	objs, ok := preds[t.Predicate]
	if !ok {
		objs = make(map[string]Term)
		preds[t.Predicate] = objs
	}
	key := t.Object.Key()
	if _, exists := objs[key]; exists {
		return false
	}
	objs[key] = t.Object

	byObj, ok := g.pos[t.Predicate]
	if !ok {
		byObj = make(map[string]map[string]struct{})
		g.pos[t.Predicate] = byObj
	}
	subjects, ok := byObj[key]
	if !ok {
		subjects = make(map[string]struct{})
		byObj[key] = subjects
	}
	subjects[t.Subject] = struct{}{}
	g.size++
	return true
}

// Remove deletes t and reports whether the graph changed.
func (g *Graph) Remove(t Triple) bool {
	objs := g.spo[t.Subject][t.Predicate]
	key := t.Object.Key()
	if _, ok := objs[key]; !ok {
		return false
	}
	delete(objs, key)
	if len(objs) == 0 {
		delete(g.spo[t.Subject], t.Predicate)
		if len(g.spo[t.Subject]) == 0 {
			delete(g.spo, t.Subject)
		}
	}
	subjects := g.pos[t.Predicate][key]
	delete(subjects, t.Subject)
	if len(subjects) == 0 {
		delete(g.pos[t.Predicate], key)
		if len(g.pos[t.Predicate]) == 0 {
			delete(g.pos, t.Predicate)
		}
	}
	g.size--
	return true
}

// Has reports whether t is in the graph.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.spo[t.Subject][t.Predicate][t.Object.Key()]
	return ok
}

// Match returns the triples matching a pattern, sorted by subject,
// predicate and object key. Empty subject or predicate and a nil object are
// wildcards.
func (g *Graph) Match(s, p string, o *Term) []Triple {
	var out []Triple
	emit := func(subj, pred string, objs map[string]Term) {
		if o != nil {
			if obj, ok := objs[o.Key()]; ok {
				out = append(out, Triple{Subject: subj, Predicate: pred, Object: obj})
			}
			return
		}
		for _, obj := range objs {
			out = append(out, Triple{Subject: subj, Predicate: pred, Object: obj})
		}
	}

	switch {
	case s != "":
		preds := g.spo[s]
		if p != "" {
			emit(s, p, preds[p])
			break
		}
		for pred, objs := range preds {
			emit(s, pred, objs)
		}
	case p != "" && o != nil:
		for subj := range g.pos[p][o.Key()] {
			out = append(out, Triple{Subject: subj, Predicate: p, Object: g.spo[subj][p][o.Key()]})
		}
	default:
		for subj, preds := range g.spo {
			if p != "" {
				if objs, ok := preds[p]; ok {
					emit(subj, p, objs)
				}
				continue
			}
			for pred, objs := range preds {
				emit(subj, pred, objs)
			}
		}
	}
	sortTriples(out)
	return out
}

// Objects returns the objects of (s, p, ?) sorted by key.
func (g *Graph) Objects(s, p string) []Term {
	objs := g.spo[s][p]
	out := make([]Term, 0, len(objs))
	for _, o := range objs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Object returns the first object of (s, p, ?) in key order.
func (g *Graph) Object(s, p string) (Term, bool) {
	objs := g.Objects(s, p)
	if len(objs) == 0 {
		return Term{}, false
	}
	return objs[0], true
}

// Subjects returns the sorted subjects of (?, p, o).
func (g *Graph) Subjects(p string, o Term) []string {
	set := g.pos[p][o.Key()]
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// HasSubject reports whether s appears as the subject of any triple.
func (g *Graph) HasSubject(s string) bool {
	_, ok := g.spo[s]
	return ok
}

// Triples returns every triple in sorted order.
func (g *Graph) Triples() []Triple {
	return g.Match("", "", nil)
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	c := New()
	for s, preds := range g.spo {
		for p, objs := range preds {
			for _, o := range objs {
				c.Add(Triple{Subject: s, Predicate: p, Object: o})
			}
		}
	}
	return c
}

// Equal reports whether both graphs hold exactly the same triples.
// Blank node identifiers are compared literally.
func (g *Graph) Equal(other *Graph) bool {
	if g.size != other.size {
		return false
	}
	for s, preds := range g.spo {
		for p, objs := range preds {
			for key := range objs {
				if _, ok := other.spo[s][p][key]; !ok {
					return false
				}
			}
		}
	}
	return true
}

func sortTriples(ts []Triple) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Subject != ts[j].Subject {
			return ts[i].Subject < ts[j].Subject
		}
		if ts[i].Predicate != ts[j].Predicate {
			return ts[i].Predicate < ts[j].Predicate
		}
		return ts[i].Object.Key() < ts[j].Object.Key()
	})
}
