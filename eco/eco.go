// Package eco maps GAF evidence codes to Evidence and Conclusion Ontology
// classes and back.
package eco

import (
	"bufio"
	_ "embed"
	"io"
	"strings"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
)

//go:embed gaf-eco-mapping.txt
var defaultMapping string

//go:embed gaf-eco-mapping-derived.txt
var derivedMapping string

// DefaultRef marks the mapping used when no reference-specific row matches.
const DefaultRef = "Default"

// Unmapped is the generic evidence class kept for unknown codes when the
// parser is told to allow them.
var Unmapped = annotation.MustCurie("ECO:0000000")

// Codes backed by an experiment, including the high throughput variants.
var experimental = map[string]bool{
	"EXP": true, "IDA": true, "IPI": true, "IMP": true, "IGI": true, "IEP": true,
	"HTP": true, "HDA": true, "HMP": true, "HGI": true, "HEP": true,
}

type codeRef struct {
	code string
	ref  string
}

// Map is an immutable code/reference to ECO lookup table.
type Map struct {
	forward map[codeRef]annotation.Curie
	reverse map[annotation.Curie]codeRef
}

// Default returns the mapping compiled into the binary.
func Default() *Map {
	m, err := Load(strings.NewReader(defaultMapping))
	if err != nil {
		panic(errors.Wrap(err, "embedded ECO mapping is malformed"))
	}
	return m
}

// Load reads a tab separated CODE, REFERENCE|Default, ECO table. Lines
// starting with # and blank lines are ignored. Classes the table does not
// name are then filled from the embedded derived table, which only serves
// ECO to code lookups.
func Load(r io.Reader) (*Map, error) {
	m := &Map{
		forward: make(map[codeRef]annotation.Curie),
		reverse: make(map[annotation.Curie]codeRef),
	}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, errors.Newf("line %d: expected 3 columns, got %d", lineNo, len(fields))
		}
		class, err := annotation.ParseCurie(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		key := codeRef{code: fields[0], ref: fields[1]}
		m.forward[key] = class
		if prev, ok := m.reverse[class]; !ok || (prev.ref != DefaultRef && key.ref == DefaultRef) {
			m.reverse[class] = key
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read ECO mapping")
	}
	if err := m.derive(strings.NewReader(derivedMapping)); err != nil {
		return nil, errors.Wrap(err, "embedded derived ECO mapping is malformed")
	}
	return m, nil
}

// derive reads ECO, CODE rows. A class already in the reverse table keeps
// its entry.
func (m *Map) derive(r io.Reader) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return errors.Newf("line %d: expected 2 columns, got %d", lineNo, len(fields))
		}
		class, err := annotation.ParseCurie(fields[0])
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
		if _, ok := m.reverse[class]; !ok {
			m.reverse[class] = codeRef{code: fields[1], ref: DefaultRef}
		}
	}
	return errors.Wrap(sc.Err(), "failed to read derived ECO mapping")
}

// ToECO resolves a GAF evidence code. A row keyed on one of refs wins over
// the code's Default row.
func (m *Map) ToECO(code string, refs []annotation.Curie) (annotation.Curie, bool) {
	for _, ref := range refs {
		if c, ok := m.forward[codeRef{code: code, ref: ref.String()}]; ok {
			return c, true
		}
	}
	c, ok := m.forward[codeRef{code: code, ref: DefaultRef}]
	return c, ok
}

// ToCode maps an ECO class back to its GAF code. ref is empty unless the
// class is only reachable through a reference-specific row.
func (m *Map) ToCode(class annotation.Curie) (code string, ref string, ok bool) {
	cr, ok := m.reverse[class]
	if !ok {
		return "", "", false
	}
	if cr.ref == DefaultRef {
		return cr.code, "", true
	}
	return cr.code, cr.ref, true
}

// Code is ToCode without the reference.
func (m *Map) Code(class annotation.Curie) string {
	code, _, _ := m.ToCode(class)
	return code
}

// Codes returns the number of distinct evidence codes in the table.
func (m *Map) Codes() int {
	seen := make(map[string]bool)
	for k := range m.forward {
		seen[k.code] = true
	}
	return len(seen)
}

// IsExperimental reports whether a GAF code is backed by an experiment.
func IsExperimental(code string) bool {
	return experimental[code]
}
