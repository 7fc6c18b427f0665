package parser

import (
	"strings"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/ontology"
)

// Config is the ambient configuration of a parse run. It is passed
// explicitly; parsers do not share state between files.
type Config struct {
	// Ontology enables obsolete-term repair and aspect inference for GPAD.
	// May be nil.
	Ontology ontology.Lookup
	// ECO maps GAF evidence codes. Nil means eco.Default().
	ECO *eco.Map

	// EntityIDSpaces restricts subject prefixes; empty allows any.
	EntityIDSpaces []string
	// ClassIDSpaces restricts term prefixes; empty allows any.
	ClassIDSpaces []string
	// Taxa restricts subject taxa (9606, taxon:9606 or NCBITaxon:9606); empty allows any.
	Taxa []string
	// ExcludedEvidence lists GAF codes or ECO classes whose lines are skipped.
	ExcludedEvidence []string

	// RepairObsolete substitutes obsolete terms that have a single replacement.
	RepairObsolete bool
	// AllowUnmappedECO keeps lines with an unknown evidence code as ECO:0000000.
	AllowUnmappedECO bool

	// Version forces a format version and skips header detection.
	Version string
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		ECO:            eco.Default(),
		RepairObsolete: true,
	}
}

// normalized holds lookups derived from Config once per parser.
type normalized struct {
	entityIDSpaces map[string]bool
	classIDSpaces  map[string]bool
	taxa           map[annotation.Curie]bool
	excluded       map[string]bool
}

func normalize(cfg Config) normalized {
	n := normalized{
		entityIDSpaces: stringSet(cfg.EntityIDSpaces),
		classIDSpaces:  stringSet(cfg.ClassIDSpaces),
		excluded:       stringSet(cfg.ExcludedEvidence),
	}
	if len(cfg.Taxa) > 0 {
		n.taxa = make(map[annotation.Curie]bool, len(cfg.Taxa))
		for _, t := range cfg.Taxa {
			t = strings.TrimSpace(t)
			t = strings.TrimPrefix(strings.TrimPrefix(t, "NCBITaxon:"), "taxon:")
			n.taxa[annotation.Curie{Namespace: "NCBITaxon", Identity: t}] = true
		}
	}
	return n
}

func stringSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	s := make(map[string]bool, len(values))
	for _, v := range values {
		s[strings.TrimSpace(v)] = true
	}
	return s
}
