package graph

import (
	"strconv"
	"strings"

	"github.com/Tezigudo/SaladBarOntology/vocabulary/salad"
)

// TermKind distinguishes IRIs, blank nodes and literals.
type TermKind uint8

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

// Term is an RDF node in object position. Literals carry an optional
// datatype IRI or language tag; an empty datatype is a plain string.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// Triple is one statement. Subjects are IRIs or blank node keys ("_:id").
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Blank returns a blank node term. The id is stored without the "_:" prefix.
func Blank(id string) Term { return Term{Kind: KindBlank, Value: strings.TrimPrefix(id, "_:")} }

// Literal returns a typed literal.
func Literal(v, datatype string) Term {
	if datatype == salad.XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// String returns a plain string literal.
func String(v string) Term { return Term{Kind: KindLiteral, Value: v} }

// Decimal returns an xsd:decimal literal in shortest round-trip form.
func Decimal(v float64) Term {
	return Literal(FormatDecimal(v), salad.XSDDecimal)
}

// FormatDecimal renders v in shortest round-trip form without exponent.
// Integral values keep one fractional digit so the lexical form stays an
// xsd:decimal when written as a bare Turtle number.
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// Float parses a numeric literal.
func (t Term) Float() (float64, bool) {
	if t.Kind != KindLiteral {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// Key is the index key of the term. For IRIs and blank nodes it equals the
// subject form, so an object can be followed as a subject.
func (t Term) Key() string {
	switch t.Kind {
	case KindIRI:
		return t.Value
	case KindBlank:
		return "_:" + t.Value
	default:
		k := `"` + t.Value + `"`
		if t.Lang != "" {
			k += "@" + t.Lang
		} else if t.Datatype != "" {
			k += "^^" + t.Datatype
		}
		return k
	}
}

func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		s := strconv.Quote(t.Value)
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	}
}

// IsBlankSubject reports whether a subject key denotes a blank node.
func IsBlankSubject(s string) bool { return strings.HasPrefix(s, "_:") }

func (t Triple) String() string {
	subj := "<" + t.Subject + ">"
	if IsBlankSubject(t.Subject) {
		subj = t.Subject
	}
	return subj + " <" + t.Predicate + "> " + t.Object.String() + " ."
}
