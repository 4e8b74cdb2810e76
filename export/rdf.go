package export

import (
	"fmt"
	"log/slog"

	"github.com/c360studio/semstreams/message"
	ssexport "github.com/c360studio/semstreams/vocabulary/export"

	"github.com/Tezigudo/SaladBarOntology/graph"
	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Source is recorded on every exported triple.
const Source = "saladbar.export"

// Result summarizes one export.
type Result struct {
	Output   string
	Triples  int
	Skipped  int
	Format   Format
	MIMEType string
}

// RDFExporter exports a graph with a configurable profile.
type RDFExporter struct {
	profile ProfileConfig
	baseIRI string
	logger  *slog.Logger
}

// NewRDFExporter creates a new RDF exporter with the specified profile.
func NewRDFExporter(profile Profile, logger *slog.Logger) *RDFExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RDFExporter{
		profile: GetProfileConfig(profile),
		baseIRI: salad.Namespace,
		logger:  logger,
	}
}

// SetBaseIRI overrides the base IRI used for prefixes in the output.
func (e *RDFExporter) SetBaseIRI(iri string) {
	if iri != "" {
		e.baseIRI = iri
	}
}

// Triples converts the graph triples selected by the profile into semstreams
// triples with dotted predicates. Triples whose predicate has no registered
// vocabulary entry are skipped and counted.
func (e *RDFExporter) Triples(g *graph.Graph) ([]message.Triple, int) {
	cls := newClassifier(g)
	var out []message.Triple
	skipped := 0
	for _, t := range g.Triples() {
		if !e.profile.includes(cls.section(t)) {
			continue
		}
		predicate, ok := salad.PredicateForIRI(t.Predicate)
		if !ok {
			skipped++
			e.logger.Debug("Skipping unregistered predicate", slog.String("predicate", t.Predicate))
			continue
		}
		out = append(out, message.Triple{
			Subject:    t.Subject,
			Predicate:  predicate,
			Object:     objectValue(t.Object),
			Source:     Source,
			Confidence: 1.0,
		})
	}
	return out, skipped
}

// Export serializes the selected part of g.
func (e *RDFExporter) Export(g *graph.Graph, format Format) (Result, error) {
	info, ok := GetFormatInfo(format)
	if !ok {
		return Result{}, fmt.Errorf("unsupported format: %s", format)
	}

	triples, skipped := e.Triples(g)
	output, err := ssexport.SerializeToString(triples, info.serializer,
		ssexport.WithBaseIRI(e.baseIRI))
	if err != nil {
		return Result{}, fmt.Errorf("serialize %s: %w", format, err)
	}

	e.logger.Debug("Exported graph",
		slog.String("profile", string(e.profile.Name)),
		slog.String("format", string(format)),
		slog.Int("triples", len(triples)),
		slog.Int("skipped", skipped))
	return Result{
		Output:   output,
		Triples:  len(triples),
		Skipped:  skipped,
		Format:   format,
		MIMEType: info.MIMEType,
	}, nil
}

// objectValue maps a term to the value semstreams expects: IRIs as strings,
// numeric literals as float64, everything else as its lexical form.
func objectValue(t graph.Term) any {
	switch t.Kind {
	case graph.KindIRI:
		return t.Value
	case graph.KindBlank:
		return "_:" + t.Value
	}
	switch t.Datatype {
	case salad.XSDDecimal, salad.XSDDouble, salad.XSDFloat, salad.XSDInteger:
		if v, ok := t.Float(); ok {
			return v
		}
	}
	return t.Value
}
