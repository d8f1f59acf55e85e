package schema

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

// use a single instance of Validate, it caches struct info.
// Initialized in its declaration so the static tables below can be built at package init.
var MappingValidate = validator.New(validator.WithRequiredStructEnabled())

var ErrEmptyMapping = errors.New("mapping has no entries")

// Synonyms lists the provider specific spellings known to mean one canonical column.
type Synonyms struct {
	Canonical string   `yaml:"canonical" validate:"required"`
	Names     []string `yaml:"synonyms" validate:"required,min=1,dive,required"`
}

// Mapping is an ordered, read-only lookup table from canonical names to their synonyms.
// Lookups scan entries in order and stop at the first match.
type Mapping struct {
	entries []Synonyms
}

// NewMapping validates and copies entries into a Mapping.
func NewMapping(entries ...Synonyms) (Mapping, error) {
	if len(entries) == 0 {
		return Mapping{}, ErrEmptyMapping
	}
	copied := make([]Synonyms, 0, len(entries))
	for _, e := range entries {
		if err := MappingValidate.Struct(e); err != nil {
			return Mapping{}, fmt.Errorf("invalid synonyms for %q: %w", e.Canonical, err)
		}
		copied = append(copied, Synonyms{Canonical: e.Canonical, Names: slices.Clone(e.Names)})
	}
	return Mapping{entries: copied}, nil
}

// MustMapping is NewMapping for static tables; it panics on invalid input.
func MustMapping(entries ...Synonyms) Mapping {
	m, err := NewMapping(entries...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Mapping) Len() int {
	return len(m.entries)
}

// Keys returns the canonical names in table order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		keys = append(keys, e.Canonical)
	}
	return keys
}

// Entries returns a copy of the table.
func (m Mapping) Entries() []Synonyms {
	out := make([]Synonyms, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, Synonyms{Canonical: e.Canonical, Names: slices.Clone(e.Names)})
	}
	return out
}

// IsCanonical reports whether name is one of the canonical keys.
func (m Mapping) IsCanonical(name string) bool {
	return slices.ContainsFunc(m.entries, func(e Synonyms) bool { return e.Canonical == name })
}

// Lookup is ReverseLookup bound to m.
func (m Mapping) Lookup(name string) (string, bool) {
	return ReverseLookup(m, name)
}

// LookupFold behaves like Lookup but compares names under Unicode case folding.
func (m Mapping) LookupFold(name string) (string, bool) {
	fold := cases.Fold()
	target := fold.String(name)
	for _, e := range m.entries {
		if fold.String(e.Canonical) == target {
			return e.Canonical, true
		}
		for _, s := range e.Names {
			if fold.String(s) == target {
				return e.Canonical, true
			}
		}
	}
	return "", false
}

// Conflicts lists synonyms claimed by more than one canonical name, keyed by synonym.
// Lookups resolve such names to the earliest entry.
func (m Mapping) Conflicts() map[string][]string {
	owners := make(map[string][]string)
	for _, e := range m.entries {
		for _, s := range e.Names {
			if !slices.Contains(owners[s], e.Canonical) {
				owners[s] = append(owners[s], e.Canonical)
			}
		}
	}
	for s, keys := range owners {
		if len(keys) < 2 {
			delete(owners, s)
		}
	}
	return owners
}

// ReverseLookup returns the canonical name for an observed column name. A name that
// equals a canonical key resolves to itself. The boolean is false when nothing matches.
func ReverseLookup(m Mapping, name string) (string, bool) {
	for _, e := range m.entries {
		if e.Canonical == name {
			return e.Canonical, true
		}
		if slices.Contains(e.Names, name) {
			return e.Canonical, true
		}
	}
	return "", false
}
