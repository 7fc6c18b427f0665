// Package annotation defines the structured annotation record shared by the
// GAF/GPAD parsers, the rule engine and the writers.
package annotation

import (
	"strings"
	"unicode"

	"github.com/teranos/gaffer/errors"
)

// ErrInvalidCurie is returned (wrapped) by ParseCurie for malformed input.
var ErrInvalidCurie = errors.New("invalid curie")

// Curie is a prefixed identifier such as GO:0005634.
// It is a comparable value and can be used as a map key.
type Curie struct {
	Namespace string
	Identity  string
}

// ParseCurie splits s at its first colon. Both parts must be non-empty and
// s must not contain whitespace. The identity may itself contain colons
// (MGI:MGI:95723).
func ParseCurie(s string) (Curie, error) {
	if s == "" {
		return Curie{}, errors.Wrap(ErrInvalidCurie, "empty identifier")
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return Curie{}, errors.Wrapf(ErrInvalidCurie, "%q contains whitespace", s)
	}
	idx := strings.Index(s, ":")
	if idx < 0 {
		return Curie{}, errors.Wrapf(ErrInvalidCurie, "%q has no prefix", s)
	}
	ns, id := s[:idx], s[idx+1:]
	if ns == "" || id == "" {
		return Curie{}, errors.Wrapf(ErrInvalidCurie, "%q has an empty prefix or local id", s)
	}
	return Curie{Namespace: ns, Identity: id}, nil
}

// MustCurie is ParseCurie for constants and tests; it panics on bad input.
func MustCurie(s string) Curie {
	c, err := ParseCurie(s)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCurie builds a Curie from an already split DB and ID pair (GAF columns 1-2).
func NewCurie(db, id string) (Curie, error) {
	return ParseCurie(db + ":" + id)
}

func (c Curie) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Namespace + ":" + c.Identity
}

// MarshalText renders the prefixed form so Curies serialize as plain strings.
func (c Curie) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the prefixed form; an empty string is the zero Curie.
func (c *Curie) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = Curie{}
		return nil
	}
	parsed, err := ParseCurie(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// IsZero reports whether c is the absent value.
func (c Curie) IsZero() bool {
	return c.Namespace == "" && c.Identity == ""
}

// ConjunctiveSet is a comma-joined group of identifiers that hold together.
// Lists of ConjunctiveSet are disjunctions ("A,B|C" = (A and B) or C).
type ConjunctiveSet []Curie

func (cs ConjunctiveSet) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// Contains reports whether c is one of the set's elements.
func (cs ConjunctiveSet) Contains(c Curie) bool {
	for _, e := range cs {
		if e == c {
			return true
		}
	}
	return false
}

// FlattenDisjunction returns every identifier in a disjunction, in order.
func FlattenDisjunction(d []ConjunctiveSet) []Curie {
	var out []Curie
	for _, cs := range d {
		out = append(out, cs...)
	}
	return out
}

// DisjunctionString renders a disjunction as "A,B|C".
func DisjunctionString(d []ConjunctiveSet) string {
	parts := make([]string, len(d))
	for i, cs := range d {
		parts[i] = cs.String()
	}
	return strings.Join(parts, "|")
}
