package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/ontology"
)

func upgradeOntology() *ontology.Graph {
	g := ontology.NewGraph("test")
	for id, ns := range map[string]string{
		"GO:0003674": annotation.NamespaceMolecularFunction,
		"GO:0005515": annotation.NamespaceMolecularFunction,
		"GO:0008150": annotation.NamespaceBiologicalProcess,
		"GO:0006915": annotation.NamespaceBiologicalProcess,
		"GO:0008372": annotation.NamespaceCellularComponent,
		"GO:0005634": annotation.NamespaceCellularComponent,
		"GO:0032991": annotation.NamespaceCellularComponent,
		"GO:0005840": annotation.NamespaceCellularComponent,
		"GO:0022626": annotation.NamespaceCellularComponent,
	} {
		g.AddTerm(ontology.Term{ID: c(id), Namespace: ns})
	}
	g.AddEdge(c("GO:0005515"), ontology.IsA, c("GO:0003674"))
	g.AddEdge(c("GO:0005840"), ontology.IsA, c("GO:0032991"))
	g.AddEdge(c("GO:0022626"), ontology.IsA, c("GO:0005840"))
	return g
}

func TestUpgradeEmptyQualifier(t *testing.T) {
	o := upgradeOntology()

	tests := []struct {
		name     string
		term     string
		current  annotation.Curie
		relation annotation.Curie
		changed  bool
	}{
		{"function", "GO:0005515", annotation.RelEnables, annotation.RelEnables, false},
		{"process", "GO:0006915", annotation.RelInvolvedIn, annotation.RelInvolvedIn, false},
		{"component", "GO:0005634", annotation.RelPartOf, annotation.RelLocatedIn, true},
		{"complex", "GO:0005840", annotation.RelPartOf, annotation.RelPartOf, false},
		{"indirect complex", "GO:0022626", annotation.RelLocatedIn, annotation.RelPartOf, true},
		{"complex root", "GO:0032991", annotation.RelLocatedIn, annotation.RelPartOf, true},
		{"process root", "GO:0008150", annotation.RelPartOf, annotation.RelInvolvedIn, true},
		{"component root", "GO:0008372", annotation.RelPartOf, annotation.RelIsActiveIn, true},
		{"unknown term", "GO:9999999", annotation.RelPartOf, annotation.RelPartOf, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &annotation.Association{Object: annotation.Term{ID: c(tt.term)}, Relation: tt.current}
			out, changed := UpgradeEmptyQualifier(in, o)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.relation, out.Relation)
			assert.Equal(t, tt.current, in.Relation, "input is not modified")
			assert.Empty(t, out.Qualifiers)

			again, changed := UpgradeEmptyQualifier(out, o)
			assert.False(t, changed)
			assert.Equal(t, out, again)
		})
	}
}

func TestUpgradeLeavesExplicitQualifiers(t *testing.T) {
	in := &annotation.Association{
		Object:     annotation.Term{ID: c("GO:0005634")},
		Relation:   annotation.RelColocalizesWith,
		Qualifiers: []annotation.Curie{annotation.RelColocalizesWith},
	}
	out, changed := UpgradeEmptyQualifier(in, upgradeOntology())
	assert.False(t, changed)
	assert.Same(t, in, out)

	out, changed = UpgradeEmptyQualifier(&annotation.Association{Object: annotation.Term{ID: c("GO:0005634")}}, nil)
	assert.False(t, changed)
	assert.True(t, out.Relation.IsZero())
}
