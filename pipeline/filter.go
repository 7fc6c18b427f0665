package pipeline

import (
	"strings"

	"github.com/teranos/gaffer/annotation"
)

// Filter decides whether an accepted record is passed on to the sinks.
// Filtered records are counted but produce no report message.
type Filter interface {
	Keep(a *annotation.Association) bool
	Name() string
}

type filterFunc struct {
	name string
	keep func(a *annotation.Association) bool
}

func (f filterFunc) Keep(a *annotation.Association) bool { return f.keep(a) }
func (f filterFunc) Name() string                        { return f.name }

// NewFilter wraps a predicate.
func NewFilter(name string, keep func(a *annotation.Association) bool) Filter {
	return filterFunc{name: name, keep: keep}
}

// TaxonFilter keeps records whose subject taxon is listed. Taxa may be given
// as 9606, taxon:9606 or NCBITaxon:9606. With includeInteracting set, a
// matching interacting taxon also keeps the record.
func TaxonFilter(taxa []string, includeInteracting bool) Filter {
	allowed := make(map[annotation.Curie]bool, len(taxa))
	for _, t := range taxa {
		t = strings.TrimSpace(t)
		t = strings.TrimPrefix(strings.TrimPrefix(t, "NCBITaxon:"), "taxon:")
		allowed[annotation.Curie{Namespace: "NCBITaxon", Identity: t}] = true
	}
	return NewFilter("taxon", func(a *annotation.Association) bool {
		if allowed[a.Subject.Taxon] {
			return true
		}
		return includeInteracting && !a.InteractingTaxon.IsZero() && allowed[a.InteractingTaxon]
	})
}

// IDSpaceFilter keeps records whose subject prefix is listed. Prefixes
// compare case-insensitively.
func IDSpaceFilter(prefixes []string) Filter {
	allowed := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		allowed[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(p), ":"))] = true
	}
	return NewFilter("idspace", func(a *annotation.Association) bool {
		return allowed[strings.ToLower(a.Subject.ID.Namespace)]
	})
}

// EvidenceFilter drops records whose GAF evidence code is listed, using code
// to resolve the record's ECO class.
func EvidenceFilter(excluded []string, code func(annotation.Curie) string) Filter {
	drop := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		drop[strings.TrimSpace(e)] = true
	}
	return NewFilter("evidence", func(a *annotation.Association) bool {
		return !drop[code(a.Evidence.Type)] && !drop[a.Evidence.Type.String()]
	})
}

// NegationFilter drops NOT records.
func NegationFilter() Filter {
	return NewFilter("negated", func(a *annotation.Association) bool { return !a.Negated })
}
