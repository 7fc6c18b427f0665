package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
)

func filterRecord() *annotation.Association {
	return &annotation.Association{
		Subject: annotation.Subject{
			ID:    c("UniProtKB:P12345"),
			Taxon: c("NCBITaxon:9606"),
		},
		Relation:         annotation.RelEnables,
		Object:           annotation.Term{ID: c("GO:0005515")},
		InteractingTaxon: c("NCBITaxon:10090"),
		Evidence:         annotation.Evidence{Type: c("ECO:0000314")},
	}
}

func TestFilters(t *testing.T) {
	negated := filterRecord()
	negated.Negated = true

	tests := []struct {
		name   string
		filter Filter
		record *annotation.Association
		keep   bool
	}{
		{"taxon bare id", TaxonFilter([]string{"9606"}, false), filterRecord(), true},
		{"taxon prefixed", TaxonFilter([]string{"taxon:9606"}, false), filterRecord(), true},
		{"taxon curie", TaxonFilter([]string{" NCBITaxon:9606 "}, false), filterRecord(), true},
		{"taxon not listed", TaxonFilter([]string{"4896"}, false), filterRecord(), false},
		{"interacting ignored", TaxonFilter([]string{"10090"}, false), filterRecord(), false},
		{"interacting included", TaxonFilter([]string{"10090"}, true), filterRecord(), true},
		{"idspace", IDSpaceFilter([]string{"UniProtKB"}), filterRecord(), true},
		{"idspace case and colon", IDSpaceFilter([]string{"uniprotkb:"}), filterRecord(), true},
		{"idspace not listed", IDSpaceFilter([]string{"MGI"}), filterRecord(), false},
		{"evidence code excluded", EvidenceFilter([]string{"IDA"}, eco.Default().Code), filterRecord(), false},
		{"evidence class excluded", EvidenceFilter([]string{"ECO:0000314"}, eco.Default().Code), filterRecord(), false},
		{"evidence kept", EvidenceFilter([]string{"IEA", "ND"}, eco.Default().Code), filterRecord(), true},
		{"positive kept", NegationFilter(), filterRecord(), true},
		{"negated dropped", NegationFilter(), negated, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keep, tt.filter.Keep(tt.record))
		})
	}
}

func TestNewFilter(t *testing.T) {
	f := NewFilter("provider", func(a *annotation.Association) bool { return a.ProvidedBy == "MGI" })
	assert.Equal(t, "provider", f.Name())
	assert.False(t, f.Keep(filterRecord()))

	a := filterRecord()
	a.ProvidedBy = "MGI"
	assert.True(t, f.Keep(a))
}
