package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/report"
)

var (
	idPrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.\-]*$`)
	idLocal  = regexp.MustCompile(`^[.:_\-0-9a-zA-Z]+$`)
	taxonID  = regexp.MustCompile(`^(?:taxon|NCBITaxon):(\d+)$`)
	extAtom  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_:]*)\(([^()]+)\)$`)
)

// strictID reports whether c matches the prefix:localid identifier syntax.
func strictID(c annotation.Curie) bool {
	return idPrefix.MatchString(c.Namespace) && idLocal.MatchString(c.Identity)
}

// coreID parses an identifier the line cannot do without. Any deviation
// from strict syntax is an error.
func coreID(value string, col int, field string) (annotation.Curie, *ParseError) {
	c, err := annotation.ParseCurie(value)
	if err != nil || !strictID(c) {
		pe := NewParseError(ErrorKindSyntax, report.TypeInvalidID,
			fmt.Sprintf("%s %q is not a valid identifier", field, value)).
			WithColumn(col).WithValue(value).
			WithSuggestion("use prefix:localid with only [.:_-0-9a-zA-Z] in the local part")
		if err != nil {
			pe.WithUnderlying(err)
		}
		return annotation.Curie{}, pe
	}
	return c, nil
}

// supportingID parses a reference or with/from identifier. Unparseable
// values come back zero with a warning; loosely formatted ones are kept with
// a warning.
func supportingID(value string, col int, field string) (annotation.Curie, *ParseError) {
	c, err := annotation.ParseCurie(value)
	if err != nil {
		return annotation.Curie{}, newWarning(ErrorKindSyntax, report.TypeInvalidID,
			fmt.Sprintf("%s %q is not an identifier and was dropped", field, value)).
			WithColumn(col).WithValue(value).WithUnderlying(err)
	}
	if !strictID(c) {
		return c, newWarning(ErrorKindSyntax, report.TypeInvalidID,
			fmt.Sprintf("%s %q does not follow identifier syntax", field, value)).
			WithColumn(col).WithValue(value)
	}
	return c, nil
}

// subjectID builds the subject from GAF/GPAD 1.2 DB and DB_Object_ID
// columns. A pipe in the local id is tolerated with a warning.
func subjectID(db, id string) (annotation.Curie, []*ParseError) {
	var problems []*ParseError
	local := id
	if strings.Contains(id, "|") {
		problems = append(problems, newWarning(ErrorKindSyntax, report.TypeInvalidID,
			fmt.Sprintf("DB_Object_ID %q contains a pipe", id)).WithColumn(2).WithValue(id))
		local = strings.ReplaceAll(id, "|", "_")
	}
	c, pe := coreID(db+":"+local, 2, "subject")
	if pe != nil {
		return annotation.Curie{}, append(problems, pe)
	}
	if local != id {
		c.Identity = id
	}
	return c, problems
}

// parseTaxon reads taxon:N or taxon:N|taxon:M into a subject and an
// interacting taxon.
func parseTaxon(value string, col int) (taxon, interacting annotation.Curie, pe *ParseError) {
	parts := strings.Split(value, "|")
	if len(parts) > 2 || value == "" {
		return taxon, interacting, NewParseError(ErrorKindSyntax, report.TypeInvalidTaxon,
			fmt.Sprintf("taxon %q is malformed", value)).WithColumn(col).WithValue(value).
			WithSuggestion("expected taxon:N or taxon:N|taxon:M")
	}
	taxon, pe = normalizeTaxon(parts[0], col)
	if pe != nil {
		return
	}
	if len(parts) == 2 {
		interacting, pe = normalizeTaxon(parts[1], col)
	}
	return
}

func normalizeTaxon(value string, col int) (annotation.Curie, *ParseError) {
	m := taxonID.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return annotation.Curie{}, NewParseError(ErrorKindSyntax, report.TypeInvalidTaxon,
			fmt.Sprintf("taxon %q is malformed", value)).WithColumn(col).WithValue(value).
			WithSuggestion("expected taxon:N")
	}
	return annotation.Curie{Namespace: "NCBITaxon", Identity: m[1]}, nil
}

// parseDate reads YYYYMMDD (iso false) or YYYY-MM-DD with an optional time
// suffix (iso true). Anything else goes through dateparse; the fallback path
// always records a warning, and an error too when it fails.
func parseDate(value string, iso bool, col int) (annotation.Date, []*ParseError) {
	if d, ok := strictDate(value, iso); ok {
		return d, nil
	}
	warn := newWarning(ErrorKindTemporal, report.TypeInvalidDate,
		fmt.Sprintf("date %q is not in %s format", value, dateLayoutName(iso))).
		WithColumn(col).WithValue(value)

	t, err := dateparse.ParseAny(value)
	if err != nil {
		fail := NewParseError(ErrorKindTemporal, report.TypeInvalidDate,
			fmt.Sprintf("date %q could not be parsed", value)).
			WithColumn(col).WithValue(value).WithUnderlying(err).
			WithSuggestion("use " + dateLayoutName(iso))
		return annotation.Date{}, []*ParseError{warn, fail}
	}
	return annotation.DateFromTime(t), []*ParseError{warn}
}

func strictDate(value string, iso bool) (annotation.Date, bool) {
	if !iso {
		if len(value) != 8 {
			return annotation.Date{}, false
		}
		t, err := time.Parse("20060102", value)
		if err != nil {
			return annotation.Date{}, false
		}
		return annotation.DateFromTime(t), true
	}
	if len(value) < 10 {
		return annotation.Date{}, false
	}
	t, err := time.Parse("2006-01-02", value[:10])
	if err != nil {
		return annotation.Date{}, false
	}
	suffix := value[10:]
	if suffix != "" && suffix[0] != 'T' {
		return annotation.Date{}, false
	}
	d := annotation.DateFromTime(t)
	d.Time = suffix
	return d, true
}

func dateLayoutName(iso bool) string {
	if iso {
		return "YYYY-MM-DD"
	}
	return "YYYYMMDD"
}

// parseQualifiers splits a pipe separated qualifier column. NOT sets negated
// and never becomes a qualifier; the remaining tokens must be relation labels.
func parseQualifiers(value string, col int) (negated bool, qualifiers []annotation.Curie, pe *ParseError) {
	if value == "" {
		return false, nil, nil
	}
	for _, tok := range strings.Split(value, "|") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if tok == "NOT" {
			negated = true
			continue
		}
		rel, ok := relationFromToken(tok)
		if !ok {
			return false, nil, NewParseError(ErrorKindSemantic, report.TypeInvalidQualifier,
				fmt.Sprintf("qualifier %q is not a known relation", tok)).
				WithColumn(col).WithValue(tok)
		}
		qualifiers = append(qualifiers, rel)
	}
	return negated, qualifiers, nil
}

// relationFromToken accepts a relation label (part_of) or a relation Curie
// (BFO:0000050).
func relationFromToken(tok string) (annotation.Curie, bool) {
	if rel, ok := annotation.RelationByLabel(tok); ok {
		return rel, true
	}
	if c, err := annotation.ParseCurie(tok); err == nil && strictID(c) {
		if _, known := annotation.RelationLabel(c); known {
			return c, true
		}
	}
	return annotation.Curie{}, false
}

// parseReferences reads the pipe separated reference column. At least one
// usable reference must remain.
func parseReferences(value string, col int) ([]annotation.Curie, []*ParseError) {
	var refs []annotation.Curie
	var problems []*ParseError
	for _, v := range strings.Split(value, "|") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		c, pe := supportingID(v, col, "reference")
		if pe != nil {
			problems = append(problems, pe)
		}
		if !c.IsZero() {
			refs = append(refs, c)
		}
	}
	if len(refs) == 0 {
		problems = append(problems, NewParseError(ErrorKindSyntax, report.TypeMissingField,
			"no valid reference").WithColumn(col).WithValue(value))
	}
	return refs, problems
}

// parseWithFrom reads "A,B|C" into a disjunction of conjunctive sets.
func parseWithFrom(value string, col int) ([]annotation.ConjunctiveSet, []*ParseError) {
	if value == "" {
		return nil, nil
	}
	var out []annotation.ConjunctiveSet
	var problems []*ParseError
	for _, group := range strings.Split(value, "|") {
		var set annotation.ConjunctiveSet
		for _, v := range strings.Split(group, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			c, pe := supportingID(v, col, "with/from")
			if pe != nil {
				problems = append(problems, pe)
			}
			if !c.IsZero() {
				set = append(set, c)
			}
		}
		if len(set) > 0 {
			out = append(out, set)
		}
	}
	return out, problems
}

// parseExtensions reads "rel(X:1),rel(Y:2)|rel(Z:3)". Any malformed atom
// fails the whole column.
func parseExtensions(value string, col int) ([]annotation.ExtensionConjunction, *ParseError) {
	if value == "" {
		return nil, nil
	}
	var out []annotation.ExtensionConjunction
	for _, group := range strings.Split(value, "|") {
		var conj annotation.ExtensionConjunction
		for _, atom := range strings.Split(group, ",") {
			unit, pe := parseExtensionUnit(strings.TrimSpace(atom), col)
			if pe != nil {
				return nil, pe
			}
			conj = append(conj, unit)
		}
		out = append(out, conj)
	}
	return out, nil
}

func parseExtensionUnit(atom string, col int) (annotation.ExtensionUnit, *ParseError) {
	m := extAtom.FindStringSubmatch(atom)
	if m == nil {
		return annotation.ExtensionUnit{}, NewParseError(ErrorKindSyntax, report.TypeExtensionSyntax,
			fmt.Sprintf("extension %q is not relation(filler)", atom)).
			WithColumn(col).WithValue(atom)
	}
	rel, ok := relationFromToken(m[1])
	if !ok {
		return annotation.ExtensionUnit{}, NewParseError(ErrorKindSemantic, report.TypeExtensionSyntax,
			fmt.Sprintf("extension relation %q is unknown", m[1])).
			WithColumn(col).WithValue(atom)
	}
	filler, err := annotation.ParseCurie(m[2])
	if err != nil {
		return annotation.ExtensionUnit{}, NewParseError(ErrorKindSyntax, report.TypeExtensionSyntax,
			fmt.Sprintf("extension filler %q is not an identifier", m[2])).
			WithColumn(col).WithValue(atom).WithUnderlying(err)
	}
	return annotation.ExtensionUnit{Relation: rel, Term: filler}, nil
}

// parseProperties reads GPAD "key=value|key=value" properties. Pairs
// without = are dropped with a warning.
func parseProperties(value string, col int) ([]annotation.Property, []*ParseError) {
	if value == "" {
		return nil, nil
	}
	var props []annotation.Property
	var problems []*ParseError
	for _, pair := range strings.Split(value, "|") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			problems = append(problems, newWarning(ErrorKindSyntax, report.TypeInvalidProperty,
				fmt.Sprintf("property %q is not key=value", pair)).WithColumn(col).WithValue(pair))
			continue
		}
		props = append(props, annotation.Property{Key: k, Value: v})
	}
	return props, problems
}

// splitPipe splits a pipe separated text column, dropping empty items.
func splitPipe(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(value, "|") {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
