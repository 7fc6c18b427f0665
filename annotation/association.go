package annotation

// Subject is the annotated gene product.
type Subject struct {
	ID       Curie    `json:"id"`
	Label    string   `json:"label"`
	FullName []string `json:"fullname,omitempty"`
	Synonyms []string `json:"synonyms,omitempty"`
	Type     []Curie  `json:"type,omitempty"`
	Taxon    Curie    `json:"taxon"`
}

// Term is the ontology class the subject is annotated to.
type Term struct {
	ID    Curie `json:"id"`
	Taxon Curie `json:"taxon,omitempty"`
}

// Evidence is the ECO evidence type with its supporting references and the
// with/from disjunction.
type Evidence struct {
	Type       Curie            `json:"type"`
	References []Curie          `json:"has_supporting_reference"`
	WithFrom   []ConjunctiveSet `json:"with_support_from,omitempty"`
}

// ExtensionUnit is one relation(filler) atom of an annotation extension.
type ExtensionUnit struct {
	Relation Curie `json:"relation"`
	Term     Curie `json:"term"`
}

// ExtensionConjunction is a comma-joined group of extension units.
type ExtensionConjunction []ExtensionUnit

// Property is one key=value annotation property. Keys may repeat.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Association is one parsed annotation.
//
// The parser builds it from a single source line (or from one disjunct of a
// multi-valued extension column). Repair rules never modify a record in
// place: they return a Clone with the repaired fields.
type Association struct {
	SourceLine        string                 `json:"source_line,omitempty"`
	Subject           Subject                `json:"subject"`
	Relation          Curie                  `json:"relation"`
	Object            Term                   `json:"object"`
	Negated           bool                   `json:"negated"`
	Qualifiers        []Curie                `json:"qualifiers,omitempty"`
	Aspect            Aspect                 `json:"aspect,omitempty"`
	InteractingTaxon  Curie                  `json:"interacting_taxon,omitempty"`
	Evidence          Evidence               `json:"evidence"`
	SubjectExtensions []ExtensionUnit        `json:"subject_extensions,omitempty"`
	ObjectExtensions  []ExtensionConjunction `json:"object_extensions,omitempty"`
	ProvidedBy        string                 `json:"provided_by"`
	Date              Date                   `json:"date"`
	Properties        []Property             `json:"properties,omitempty"`
}

// Clone returns a deep copy.
func (a *Association) Clone() *Association {
	if a == nil {
		return nil
	}
	c := *a
	c.Subject.FullName = cloneStrings(a.Subject.FullName)
	c.Subject.Synonyms = cloneStrings(a.Subject.Synonyms)
	c.Subject.Type = cloneCuries(a.Subject.Type)
	c.Qualifiers = cloneCuries(a.Qualifiers)
	c.Evidence.References = cloneCuries(a.Evidence.References)
	if a.Evidence.WithFrom != nil {
		c.Evidence.WithFrom = make([]ConjunctiveSet, len(a.Evidence.WithFrom))
		for i, cs := range a.Evidence.WithFrom {
			c.Evidence.WithFrom[i] = ConjunctiveSet(cloneCuries(cs))
		}
	}
	if a.SubjectExtensions != nil {
		c.SubjectExtensions = append([]ExtensionUnit(nil), a.SubjectExtensions...)
	}
	if a.ObjectExtensions != nil {
		c.ObjectExtensions = make([]ExtensionConjunction, len(a.ObjectExtensions))
		for i, conj := range a.ObjectExtensions {
			c.ObjectExtensions[i] = append(ExtensionConjunction(nil), conj...)
		}
	}
	if a.Properties != nil {
		c.Properties = append([]Property(nil), a.Properties...)
	}
	return &c
}

// WithFromIDs returns every identifier in the with/from column.
func (a *Association) WithFromIDs() []Curie {
	return FlattenDisjunction(a.Evidence.WithFrom)
}

// PropertyValues returns the values of every property with key.
func (a *Association) PropertyValues(key string) []string {
	var out []string
	for _, p := range a.Properties {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// HasQualifier reports whether q is among the qualifiers.
func (a *Association) HasQualifier(q Curie) bool {
	return ContainsCurie(a.Qualifiers, q)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneCuries(s []Curie) []Curie {
	if s == nil {
		return nil
	}
	return append([]Curie(nil), s...)
}
