// Package ontology provides the read-only ontology capability consumed by the
// parser and the rule engine: is-a/part-of closures, OBO namespaces, subsets,
// obsolescence and labels.
package ontology

import "github.com/teranos/gaffer/annotation"

// Predicates used when walking the graph.
var (
	IsA    = annotation.MustCurie("rdfs:subClassOf")
	PartOf = annotation.RelPartOf
)

// Lookup is the ontology capability. Implementations are read-only once
// loaded and every result is returned in a stable order.
type Lookup interface {
	// Ancestors returns terms reachable from term by following the given
	// predicates upward. With reflexive set, term itself is included.
	Ancestors(term annotation.Curie, predicates []annotation.Curie, reflexive bool) []annotation.Curie
	// Descendants is the inverse of Ancestors.
	Descendants(term annotation.Curie, predicates []annotation.Curie, reflexive bool) []annotation.Curie
	IsObsolete(term annotation.Curie) bool
	ReplacedBy(term annotation.Curie) []annotation.Curie
	// Namespace returns the OBO namespace, or "" when unknown.
	Namespace(term annotation.Curie) string
	// Subset returns the members of a named subset such as gocheck_do_not_annotate.
	Subset(name string) []annotation.Curie
	Label(term annotation.Curie) (string, bool)
	Has(term annotation.Curie) bool
}

// IsDescendant reports whether term is reached from ancestor by the given
// predicates, counting term == ancestor as a match.
func IsDescendant(o Lookup, term, ancestor annotation.Curie, predicates ...annotation.Curie) bool {
	if o == nil {
		return false
	}
	if term == ancestor {
		return true
	}
	if len(predicates) == 0 {
		predicates = []annotation.Curie{IsA}
	}
	return annotation.ContainsCurie(o.Ancestors(term, predicates, false), ancestor)
}

// Set turns a closure result into a membership set.
func Set(terms []annotation.Curie) map[annotation.Curie]bool {
	s := make(map[annotation.Curie]bool, len(terms))
	for _, t := range terms {
		s[t] = true
	}
	return s
}
