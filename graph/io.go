package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"

	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// Format is an RDF serialization.
type Format string

const (
	FormatRDFXML   Format = "rdfxml"
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
)

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rdfxml", "rdf/xml", "xml", "owl", "rdf":
		return FormatRDFXML, nil
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rdf", ".owl", ".xml":
		return FormatRDFXML, nil
	case ".ttl":
		return FormatTurtle, nil
	case ".nt":
		return FormatNTriples, nil
	}
	return "", fmt.Errorf("%w: cannot infer format of %s", ErrUnsupportedFormat, path)
}

// Writable reports whether graphs can be serialized in f.
func (f Format) Writable() bool {
	return f == FormatTurtle || f == FormatNTriples
}

func (f Format) codec() (rdf.Format, error) {
	switch f {
	case FormatRDFXML:
		return rdf.RDFXML, nil
	case FormatTurtle:
		return rdf.Turtle, nil
	case FormatNTriples:
		return rdf.NTriples, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// Read parses a serialized graph. Relative IRIs resolve against the
// ontology namespace.
func Read(r io.Reader, format Format) (*Graph, error) {
	codec, err := format.codec()
	if err != nil {
		return nil, err
	}
	dec := rdf.NewTripleDecoder(r, codec)
	if base, err := rdf.NewIRI(strings.TrimSuffix(salad.Namespace, "#")); err == nil {
		_ = dec.SetOption(rdf.Base, base)
	}

	g := New()
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode triple: %w", err)
		}
		triple, err := fromCodec(t)
		if err != nil {
			return nil, err
		}
		g.Add(triple)
	}
	return g, nil
}

// Write serializes g in sorted triple order.
func Write(w io.Writer, g *Graph, format Format) error {
	if !format.Writable() {
		return fmt.Errorf("%w: %s is read-only", ErrUnsupportedFormat, format)
	}
	codec, err := format.codec()
	if err != nil {
		return err
	}
	enc := rdf.NewTripleEncoder(w, codec)
	for _, t := range g.Triples() {
		ct, err := toCodec(t)
		if err != nil {
			return err
		}
		if err := enc.Encode(ct); err != nil {
			return fmt.Errorf("encode triple %s: %w", t, err)
		}
	}
	return enc.Close()
}

// Load reads the graph file at path.
func Load(path string, format Format) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	g, err := Read(bufio.NewReader(f), format)
	if err != nil {
		return nil, &IOError{Op: "parse", Path: path, Err: err}
	}
	return g, nil
}

// Save writes g to path atomically: the graph is serialized to a temporary
// file in the same directory which then replaces path. On failure path is
// left untouched.
func Save(path string, g *Graph, format Format) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, g, format); err != nil {
		tmp.Close()
		cleanup()
		return &IOError{Op: "serialize", Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		cleanup()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func fromCodec(t rdf.Triple) (Triple, error) {
	var subject string
	switch s := t.Subj.(type) {
	case rdf.IRI:
		subject = s.String()
	case rdf.Blank:
		subject = "_:" + strings.TrimPrefix(s.String(), "_:")
	default:
		return Triple{}, fmt.Errorf("unsupported subject term %v", t.Subj)
	}

	var object Term
	switch o := t.Obj.(type) {
	case rdf.IRI:
		object = IRI(o.String())
	case rdf.Blank:
		object = Blank(o.String())
	case rdf.Literal:
		object = Literal(o.String(), o.DataType.String())
		if lang := o.Lang(); lang != "" {
			object.Lang = lang
			object.Datatype = ""
		}
	default:
		return Triple{}, fmt.Errorf("unsupported object term %v", t.Obj)
	}
	return Triple{Subject: subject, Predicate: t.Pred.String(), Object: object}, nil
}

func toCodec(t Triple) (rdf.Triple, error) {
	var out rdf.Triple
	if IsBlankSubject(t.Subject) {
		b, err := rdf.NewBlank(strings.TrimPrefix(t.Subject, "_:"))
		if err != nil {
			return out, fmt.Errorf("subject %s: %w", t.Subject, err)
		}
		out.Subj = b
	} else {
		iri, err := rdf.NewIRI(t.Subject)
		if err != nil {
			return out, fmt.Errorf("subject %s: %w", t.Subject, err)
		}
		out.Subj = iri
	}

	pred, err := rdf.NewIRI(t.Predicate)
	if err != nil {
		return out, fmt.Errorf("predicate %s: %w", t.Predicate, err)
	}
	out.Pred = pred

	switch t.Object.Kind {
	case KindIRI:
		iri, err := rdf.NewIRI(t.Object.Value)
		if err != nil {
			return out, fmt.Errorf("object %s: %w", t.Object.Value, err)
		}
		out.Obj = iri
	case KindBlank:
		b, err := rdf.NewBlank(t.Object.Value)
		if err != nil {
			return out, fmt.Errorf("object %s: %w", t.Object, err)
		}
		out.Obj = b
	default:
		lit, err := literalToCodec(t.Object)
		if err != nil {
			return out, fmt.Errorf("object %s: %w", t.Object, err)
		}
		out.Obj = lit
	}
	return out, nil
}

func literalToCodec(t Term) (rdf.Literal, error) {
	switch {
	case t.Lang != "":
		return rdf.NewLangLiteral(t.Value, t.Lang)
	case t.Datatype == "":
		return rdf.NewLiteral(t.Value)
	default:
		dt, err := rdf.NewIRI(t.Datatype)
		if err != nil {
			return rdf.Literal{}, err
		}
		return rdf.NewTypedLiteral(t.Value, dt), nil
	}
}
