package annotation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/gaffer/errors"
)

func TestParseCurie(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Curie
		wantErr bool
	}{
		{"go term", "GO:0005634", Curie{"GO", "0005634"}, false},
		{"nested colon", "MGI:MGI:95723", Curie{"MGI", "MGI:95723"}, false},
		{"empty", "", Curie{}, true},
		{"no colon", "GO0005634", Curie{}, true},
		{"empty prefix", ":0005634", Curie{}, true},
		{"empty local", "GO:", Curie{}, true},
		{"whitespace", "GO: 0005634", Curie{}, true},
		{"tab", "GO:0005634\t", Curie{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurie(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCurie))
				assert.True(t, got.IsZero(), "no partial curie on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestCurieAsMapKey(t *testing.T) {
	seen := map[Curie]int{}
	seen[MustCurie("GO:0005634")]++
	seen[MustCurie("GO:0005634")]++
	seen[MustCurie("GO:0005635")]++
	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[Curie{"GO", "0005634"}])
}

func TestMustCuriePanics(t *testing.T) {
	assert.Panics(t, func() { MustCurie("nope") })
}

func TestDisjunction(t *testing.T) {
	d := []ConjunctiveSet{
		{MustCurie("SGD:S000001583"), MustCurie("SGD:S000002")},
		{MustCurie("UniProtKB:P12345")},
	}
	assert.Equal(t, "SGD:S000001583,SGD:S000002|UniProtKB:P12345", DisjunctionString(d))
	assert.Len(t, FlattenDisjunction(d), 3)
	assert.True(t, d[0].Contains(MustCurie("SGD:S000002")))
	assert.False(t, d[1].Contains(MustCurie("SGD:S000002")))
	assert.Equal(t, "", DisjunctionString(nil))
}

func TestRelations(t *testing.T) {
	c, ok := RelationByLabel("enables")
	require.True(t, ok)
	assert.Equal(t, "RO:0002327", c.String())

	label, ok := RelationLabel(MustCurie("BFO:0000050"))
	require.True(t, ok)
	assert.Equal(t, "part_of", label)

	_, ok = RelationByLabel("frobnicates")
	assert.False(t, ok)

	assert.True(t, ContainsCurie(RelationsForAspect(AspectFunction), RelContributesTo))
	assert.False(t, ContainsCurie(RelationsForAspect(AspectFunction), RelInvolvedIn))
	assert.True(t, ContainsCurie(RelationsForAspect(AspectComponent), RelIsActiveIn))
	assert.Nil(t, RelationsForAspect(Aspect("X")))
}

func TestAspect(t *testing.T) {
	assert.True(t, AspectProcess.Valid())
	assert.False(t, Aspect("Q").Valid())

	a, ok := AspectFromNamespace(NamespaceMolecularFunction)
	require.True(t, ok)
	assert.Equal(t, AspectFunction, a)

	_, ok = AspectFromNamespace("external")
	assert.False(t, ok)

	for aspect, want := range map[Aspect]Curie{
		AspectFunction:  RelEnables,
		AspectProcess:   RelInvolvedIn,
		AspectComponent: RelPartOf,
	} {
		got, ok := DefaultRelation(aspect)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok = DefaultRelation(Aspect(""))
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	d := Date{Year: 2021, Month: 3, Day: 9}
	assert.Equal(t, "20210309", d.YMD())
	assert.Equal(t, "2021-03-09", d.ISO())

	d.Time = "T10:00:00"
	assert.Equal(t, "2021-03-09T10:00:00", d.ISO())

	tm := d.ToTime()
	assert.Equal(t, 2021, tm.Year())
	assert.Equal(t, time.March, tm.Month())

	assert.Equal(t, Date{Year: 2020, Month: 1, Day: 2}, DateFromTime(time.Date(2020, 1, 2, 15, 0, 0, 0, time.UTC)))
	assert.True(t, Date{}.IsZero())
}

func sampleAssociation() *Association {
	return &Association{
		SourceLine: "PomBase\tSPAC25B8.17",
		Subject: Subject{
			ID:       MustCurie("PomBase:SPAC25B8.17"),
			Label:    "ypf1",
			FullName: []string{"intramembrane aspartyl protease"},
			Synonyms: []string{"ppp81"},
			Type:     []Curie{MustCurie("PR:000000001")},
			Taxon:    MustCurie("NCBITaxon:4896"),
		},
		Relation:   RelPartOf,
		Object:     Term{ID: MustCurie("GO:0000006"), Taxon: MustCurie("NCBITaxon:4896")},
		Qualifiers: []Curie{RelPartOf},
		Aspect:     AspectComponent,
		Evidence: Evidence{
			Type:       MustCurie("ECO:0000266"),
			References: []Curie{MustCurie("GO_REF:0000024")},
			WithFrom:   []ConjunctiveSet{{MustCurie("SGD:S000001583")}},
		},
		SubjectExtensions: []ExtensionUnit{{Relation: RelSubClassOf, Term: MustCurie("UniProtKB:P12345")}},
		ObjectExtensions:  []ExtensionConjunction{{{Relation: RelPartOf, Term: MustCurie("X:1")}}},
		ProvidedBy:        "PomBase",
		Date:              Date{Year: 2015, Month: 3, Day: 13},
		Properties:        []Property{{Key: "noctua-model-id", Value: "gomodel:1"}},
	}
}

func TestAssociationCloneIsDeep(t *testing.T) {
	orig := sampleAssociation()
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Subject.Synonyms[0] = "changed"
	c.Subject.Type[0] = MustCurie("SO:0000704")
	c.Qualifiers[0] = RelLocatedIn
	c.Evidence.References[0] = MustCurie("PMID:1")
	c.Evidence.WithFrom[0][0] = MustCurie("SGD:X")
	c.SubjectExtensions[0].Term = MustCurie("UniProtKB:Q1")
	c.ObjectExtensions[0][0].Term = MustCurie("X:2")
	c.Properties[0].Value = "gomodel:2"

	fresh := sampleAssociation()
	assert.Equal(t, fresh, orig, "mutating the clone must not touch the original")

	var nilAssoc *Association
	assert.Nil(t, nilAssoc.Clone())
}

func TestAssociationHelpers(t *testing.T) {
	a := sampleAssociation()
	a.Properties = append(a.Properties, Property{Key: "noctua-model-id", Value: "gomodel:3"})
	assert.Equal(t, []string{"gomodel:1", "gomodel:3"}, a.PropertyValues("noctua-model-id"))
	assert.Empty(t, a.PropertyValues("contributor"))
	assert.True(t, a.HasQualifier(RelPartOf))
	assert.False(t, a.HasQualifier(RelEnables))
	assert.Equal(t, []Curie{MustCurie("SGD:S000001583")}, a.WithFromIDs())
}

func TestGeneProductType(t *testing.T) {
	c, ok := GeneProductType("protein")
	require.True(t, ok)
	assert.Equal(t, "PR:000000001", c.String())
	assert.Equal(t, "protein", GeneProductTypeLabel(c))

	c, ok = GeneProductType("SO:0000704")
	require.True(t, ok)
	assert.Equal(t, "gene", GeneProductTypeLabel(c))

	_, ok = GeneProductType("widget")
	assert.False(t, ok)

	assert.Equal(t, "XX:1", GeneProductTypeLabel(MustCurie("XX:1")))
}

func TestCurieJSON(t *testing.T) {
	a := sampleAssociation()
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":"PomBase:SPAC25B8.17"`)

	var back Association
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, a.Subject.ID, back.Subject.ID)
	assert.True(t, back.InteractingTaxon.IsZero())
	assert.Equal(t, a.Evidence.WithFrom, back.Evidence.WithFrom)
}
