package graph

// Stats counts the triples a Writer changed.
type Stats struct {
	Added   int `json:"added" yaml:"added"`
	Removed int `json:"removed" yaml:"removed"`
}

// Changed reports whether any triple was added or removed.
func (s Stats) Changed() bool { return s.Added+s.Removed > 0 }

// Writer is the only mutation path used by the resolver, the aggregator and
// the repair stage. Its primitives are idempotent: applying the same call
// twice leaves the graph as the first call left it.
type Writer struct {
	g     *Graph
	stats Stats
}

// NewWriter returns a Writer over g.
func NewWriter(g *Graph) *Writer {
	return &Writer{g: g}
}

// Graph returns the underlying graph for reads.
func (w *Writer) Graph() *Graph { return w.g }

// Stats returns the cumulative counts.
func (w *Writer) Stats() Stats { return w.stats }

// UpsertTriple makes o the only value of the functional relation (s, p).
// It reports whether the graph changed.
func (w *Writer) UpsertTriple(s, p string, o Term) bool {
	existing := w.g.Objects(s, p)
	if len(existing) == 1 && existing[0].Key() == o.Key() {
		return false
	}
	for _, old := range existing {
		if old.Key() == o.Key() {
			continue
		}
		w.remove(Triple{Subject: s, Predicate: p, Object: old})
	}
	return w.add(Triple{Subject: s, Predicate: p, Object: o}) || len(existing) > 0
}

// AddTripleIfAbsent adds (s, p, o) for multi-valued relations. It reports
// whether the triple was new.
func (w *Writer) AddTripleIfAbsent(s, p string, o Term) bool {
	return w.add(Triple{Subject: s, Predicate: p, Object: o})
}

// Retract removes every triple matching the pattern and returns how many
// were removed. Empty subject or predicate and a nil object are wildcards.
func (w *Writer) Retract(s, p string, o *Term) int {
	n := 0
	for _, t := range w.g.Match(s, p, o) {
		if w.remove(t) {
			n++
		}
	}
	return n
}

// RetractNode removes every triple in which node is the subject or an IRI
// object.
func (w *Writer) RetractNode(node string) int {
	n := w.Retract(node, "", nil)
	obj := IRI(node)
	for _, t := range w.g.Match("", "", &obj) {
		if w.remove(t) {
			n++
		}
	}
	return n
}

func (w *Writer) add(t Triple) bool {
	if !w.g.Add(t) {
		return false
	}
	w.stats.Added++
	return true
}

func (w *Writer) remove(t Triple) bool {
	if !w.g.Remove(t) {
		return false
	}
	w.stats.Removed++
	return true
}
