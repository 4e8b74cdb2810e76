// Package ident decomposes composite entity names such as "Tomato300g" into
// a base name, a numeric amount and a unit suffix.
//
// Composite names are a legacy encoding; the parser is only used at the
// ingestion boundary, after which amount and unit live on the entity as
// explicit hasAmount/hasUnit attributes.
package ident

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// suffixPattern matches the trailing numeric run and its unit letters.
// RE2 reports the leftmost match that reaches the end of input, which is
// the longest trailing run.
var suffixPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)(\p{L}*)$`)

// Parsed is a decomposed composite name.
type Parsed struct {
	Base string
	// Amount is only meaningful when HasAmount is true.
	Amount    float64
	HasAmount bool
	// Unit is the raw suffix token. Empty means no unit was declared.
	Unit string
}

// Clean removes zero-width characters, non-breaking spaces and all other
// whitespace from a name.
func Clean(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00a0':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

// Parse cleans name and splits off its trailing amount and unit. A name
// without a trailing numeric run is returned whole as the base.
func Parse(name string) Parsed {
	cleaned := Clean(name)
	m := suffixPattern.FindStringSubmatchIndex(cleaned)
	if m == nil {
		return Parsed{Base: cleaned}
	}
	amount, err := strconv.ParseFloat(cleaned[m[2]:m[3]], 64)
	if err != nil {
		return Parsed{Base: cleaned}
	}
	return Parsed{
		Base:      cleaned[:m[0]],
		Amount:    amount,
		HasAmount: true,
		Unit:      cleaned[m[4]:m[5]],
	}
}

// SubstancePortionName is the name of the SubstancePortion holding the
// content of substance in entity. Parentheses, slashes and whitespace are
// removed from the entity name first.
func SubstancePortionName(entity, substance string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '/':
			return -1
		}
		return r
	}, Clean(entity))
	return cleaned + substance
}
