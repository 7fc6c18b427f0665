package rules

import (
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
)

// Group is an upstream submitter and the annotations it asks to have
// filtered out of its own files.
type Group struct {
	ID        string      `yaml:"id"`
	Label     string      `yaml:"label"`
	FilterOut GroupFilter `yaml:"filter_out"`
}

// GroupFilter lists what a group rejects. Evidence entries may be GAF codes
// or ECO classes.
type GroupFilter struct {
	Evidence          []string            `yaml:"evidence"`
	References        []annotation.Curie  `yaml:"references"`
	EvidenceReference []EvidenceReference `yaml:"evidence_reference"`
	Properties        []string            `yaml:"annotation_properties"`
}

// EvidenceReference rejects one evidence/reference combination.
type EvidenceReference struct {
	Evidence  string           `yaml:"evidence"`
	Reference annotation.Curie `yaml:"reference"`
}

// GoRef is GO_REF metadata: deprecation and the evidence it may support.
type GoRef struct {
	ID            annotation.Curie `yaml:"id"`
	Title         string           `yaml:"title"`
	IsObsolete    bool             `yaml:"is_obsolete"`
	EvidenceCodes []string         `yaml:"evidence_codes"`
}

// ExtensionConstraint is one allowed annotation-extension shape: the
// relation, the prefixes its filler may use, the branch the annotated term
// must lie in and how often the relation may appear in one conjunction
// (0 means unbounded).
type ExtensionConstraint struct {
	Relation    annotation.Curie `yaml:"-"`
	RelationRaw string           `yaml:"relation"`
	Namespaces  []string         `yaml:"namespaces"`
	PrimaryRoot annotation.Curie `yaml:"primary_root"`
	Cardinality int              `yaml:"cardinality"`
}

// TaxonCheck is one precomputed taxon inference: whether term may be
// annotated for taxon with relation.
type TaxonCheck struct {
	Relation    annotation.Curie `yaml:"-"`
	RelationRaw string           `yaml:"relation"`
	Term        annotation.Curie `yaml:"term"`
	Taxon       string           `yaml:"taxon"`
	Valid       bool             `yaml:"valid"`
}

// Metadata is the YAML document carrying everything the rules consult
// besides the ontology.
type Metadata struct {
	Groups               []Group               `yaml:"groups"`
	GoRefs               []GoRef               `yaml:"gorefs"`
	ExtensionConstraints []ExtensionConstraint `yaml:"extension_constraints"`
	TaxonChecks          []TaxonCheck          `yaml:"taxon_checks"`
	DualSpeciesRoots     []annotation.Curie    `yaml:"dual_species_roots"`
}

// LoadMetadataFile reads metadata YAML from path.
func LoadMetadataFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open metadata %s", path)
	}
	defer f.Close()
	m, err := LoadMetadata(f)
	if err != nil {
		return nil, errors.Wrapf(err, "metadata %s", path)
	}
	return m, nil
}

// LoadMetadata decodes metadata YAML and resolves relation labels.
func LoadMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}
	for i := range m.ExtensionConstraints {
		rel, err := resolveRelation(m.ExtensionConstraints[i].RelationRaw)
		if err != nil {
			return nil, errors.Wrapf(err, "extension constraint %d", i+1)
		}
		m.ExtensionConstraints[i].Relation = rel
	}
	for i := range m.TaxonChecks {
		rel, err := resolveRelation(m.TaxonChecks[i].RelationRaw)
		if err != nil {
			return nil, errors.Wrapf(err, "taxon check %d", i+1)
		}
		m.TaxonChecks[i].Relation = rel
	}
	return &m, nil
}

// Apply copies the metadata into cfg.
func (m *Metadata) Apply(cfg *Config) {
	cfg.Groups = append(cfg.Groups, m.Groups...)
	if len(m.GoRefs) > 0 && cfg.GoRefs == nil {
		cfg.GoRefs = make(map[annotation.Curie]GoRef, len(m.GoRefs))
	}
	for _, ref := range m.GoRefs {
		cfg.GoRefs[ref.ID] = ref
	}
	cfg.ExtensionConstraints = append(cfg.ExtensionConstraints, m.ExtensionConstraints...)
	if len(m.TaxonChecks) > 0 {
		if cfg.Taxa == nil {
			cfg.Taxa = NewTaxonTable()
		}
		for _, tc := range m.TaxonChecks {
			cfg.Taxa.Set(tc.Relation, tc.Term, taxonCurie(tc.Taxon), tc.Valid)
		}
	}
	if len(m.DualSpeciesRoots) > 0 {
		cfg.DualSpeciesRoots = append([]annotation.Curie(nil), m.DualSpeciesRoots...)
	}
}

func resolveRelation(s string) (annotation.Curie, error) {
	if rel, ok := annotation.RelationByLabel(s); ok {
		return rel, nil
	}
	c, err := annotation.ParseCurie(s)
	if err != nil {
		return annotation.Curie{}, errors.Wrapf(errors.ErrInvalidConfig, "relation %q", s)
	}
	return c, nil
}

// taxonCurie accepts 9606, taxon:9606 or NCBITaxon:9606.
func taxonCurie(s string) annotation.Curie {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "NCBITaxon:"), "taxon:")
	return annotation.Curie{Namespace: "NCBITaxon", Identity: s}
}

type taxonKey struct {
	relation annotation.Curie
	term     annotation.Curie
	taxon    annotation.Curie
}

// TaxonTable is the precomputed taxon inference consulted by the taxon
// rule. A missing key means the inference is unknown and the rule passes.
type TaxonTable struct {
	checks map[taxonKey]bool
}

// NewTaxonTable returns an empty table.
func NewTaxonTable() *TaxonTable {
	return &TaxonTable{checks: make(map[taxonKey]bool)}
}

// Set records whether term is valid for taxon under relation.
func (t *TaxonTable) Set(relation, term, taxon annotation.Curie, valid bool) {
	t.checks[taxonKey{relation: relation, term: term, taxon: taxon}] = valid
}

// Valid returns the recorded inference and whether one exists.
func (t *TaxonTable) Valid(relation, term, taxon annotation.Curie) (valid, known bool) {
	if t == nil {
		return false, false
	}
	valid, known = t.checks[taxonKey{relation: relation, term: term, taxon: taxon}]
	return valid, known
}

// Len returns the number of recorded inferences.
func (t *TaxonTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.checks)
}
