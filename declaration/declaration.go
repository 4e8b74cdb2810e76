// Package declaration loads the externally maintained mapping of salads to
// the portions they are made of.
//
// A declaration file is YAML:
//
//	salads:
//	  GreekSalad:
//	    - Tomato300g
//	    - OliveOil90ml
//
// Names are ontology local names. Several files can be combined; portions
// declared twice for one salad are kept once.
package declaration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/Tezigudo/SaladBarOntology/ident"
)

// ErrEmptyName is returned when a salad or portion name is empty after
// cleaning.
var ErrEmptyName = errors.New("empty name in declaration")

// Pair is one declared salad-portion membership.
type Pair struct {
	Salad   string `json:"salad" yaml:"salad"`
	Portion string `json:"portion" yaml:"portion"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Set is a merged collection of declarations.
type Set struct {
	pairs map[Pair]struct{}
	files []string
}

type document struct {
	Salads map[string][]string `yaml:"salads"`
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{pairs: make(map[Pair]struct{})}
}

// Add declares that salad contains portion.
func (s *Set) Add(saladName, portion, source string) error {
	saladName, portion = ident.Clean(saladName), ident.Clean(portion)
	if saladName == "" || portion == "" {
		return fmt.Errorf("%w: salad %q portion %q", ErrEmptyName, saladName, portion)
	}
	s.pairs[Pair{Salad: saladName, Portion: portion, Source: source}] = struct{}{}
	return nil
}

// Len returns the number of distinct salad-portion pairs.
func (s *Set) Len() int { return len(s.Pairs()) }

// Files returns the files the set was loaded from.
func (s *Set) Files() []string { return s.files }

// Pairs returns the distinct pairs sorted by salad then portion. When the
// same pair was declared in several files the first source wins.
func (s *Set) Pairs() []Pair {
	all := make([]Pair, 0, len(s.pairs))
	for p := range s.pairs {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Salad != all[j].Salad {
			return all[i].Salad < all[j].Salad
		}
		if all[i].Portion != all[j].Portion {
			return all[i].Portion < all[j].Portion
		}
		return all[i].Source < all[j].Source
	})
	out := all[:0]
	for i, p := range all {
		if i > 0 && p.Salad == all[i-1].Salad && p.Portion == all[i-1].Portion {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Parse reads one declaration document.
func Parse(data []byte, source string) (*Set, error) {
	set := NewSet()
	if err := set.parse(data, source); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Set) parse(data []byte, source string) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse declarations %s: %w", source, err)
	}
	for saladName, portions := range doc.Salads {
		for _, portion := range portions {
			if err := s.Add(saladName, portion, source); err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
		}
	}
	return nil
}

// Load expands glob patterns (supporting **) and merges every matching
// file. A pattern that matches nothing is not an error.
func Load(patterns []string) (*Set, error) {
	set := NewSet()
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		sort.Strings(matches)
		for _, path := range matches {
			path = filepath.Clean(path)
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}

			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read declarations: %w", err)
			}
			if err := set.parse(data, path); err != nil {
				return nil, err
			}
			set.files = append(set.files, path)
		}
	}
	return set, nil
}
