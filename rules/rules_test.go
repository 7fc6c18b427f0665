package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/ontology"
	"github.com/teranos/gaffer/report"
)

var c = annotation.MustCurie

var frozenNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func testOntology() *ontology.Graph {
	g := ontology.NewGraph("test")
	add := func(id, ns string, subsets ...string) {
		g.AddTerm(ontology.Term{ID: c(id), Namespace: ns, Subsets: subsets})
	}
	mf, bp, cc := annotation.NamespaceMolecularFunction, annotation.NamespaceBiologicalProcess, annotation.NamespaceCellularComponent

	add("GO:0003674", mf)
	add("GO:0005488", mf, SubsetDoNotAnnotate)
	add("GO:0005515", mf)
	add("GO:0042803", mf)
	add("GO:0003824", mf)
	add("GO:0016301", mf)
	g.AddEdge(c("GO:0005488"), ontology.IsA, c("GO:0003674"))
	g.AddEdge(c("GO:0005515"), ontology.IsA, c("GO:0005488"))
	g.AddEdge(c("GO:0042803"), ontology.IsA, c("GO:0005515"))
	g.AddEdge(c("GO:0003824"), ontology.IsA, c("GO:0003674"))
	g.AddEdge(c("GO:0016301"), ontology.IsA, c("GO:0003824"))

	add("GO:0008150", bp)
	add("GO:0009987", bp, SubsetDoNotManuallyAnnotate)
	add("GO:0006915", bp)
	add("GO:0044419", bp)
	add("GO:0052031", bp)
	g.AddEdge(c("GO:0009987"), ontology.IsA, c("GO:0008150"))
	g.AddEdge(c("GO:0006915"), ontology.IsA, c("GO:0009987"))
	g.AddEdge(c("GO:0044419"), ontology.IsA, c("GO:0008150"))
	g.AddEdge(c("GO:0052031"), ontology.PartOf, c("GO:0044419"))

	add("GO:0005575", cc)
	add("GO:0005634", cc)
	add("GO:0032991", cc)
	add("GO:0005840", cc)
	g.AddEdge(c("GO:0005634"), ontology.IsA, c("GO:0005575"))
	g.AddEdge(c("GO:0032991"), ontology.IsA, c("GO:0005575"))
	g.AddEdge(c("GO:0005840"), ontology.IsA, c("GO:0032991"))
	return g
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Ontology = testOntology()
	cfg.Now = func() time.Time { return frozenNow }
	return cfg
}

// record builds an annotation that passes every rule for most terms.
func record(term, code string) *annotation.Association {
	class, ok := eco.Default().ToECO(code, nil)
	if !ok {
		panic("no ECO class for " + code)
	}
	a := &annotation.Association{
		Subject: annotation.Subject{
			ID:    c("UniProtKB:P12345"),
			Label: "ABC1",
			Type:  []annotation.Curie{c("PR:000000001")},
			Taxon: c("NCBITaxon:9606"),
		},
		Object: annotation.Term{ID: c(term)},
		Evidence: annotation.Evidence{
			Type:       class,
			References: []annotation.Curie{c("PMID:1")},
		},
		ProvidedBy: "UniProt",
		Date:       annotation.Date{Year: 2024, Month: 5, Day: 1},
	}
	switch testOntology().Namespace(c(term)) {
	case annotation.NamespaceMolecularFunction:
		a.Aspect, a.Relation = annotation.AspectFunction, annotation.RelEnables
	case annotation.NamespaceBiologicalProcess:
		a.Aspect, a.Relation = annotation.AspectProcess, annotation.RelInvolvedIn
	default:
		a.Aspect, a.Relation = annotation.AspectComponent, annotation.RelLocatedIn
	}
	a.Qualifiers = []annotation.Curie{a.Relation}
	return a
}

func only(id ID) func(*Config) {
	return func(cfg *Config) { cfg.Enable(id) }
}

func run(cfg Config, a *annotation.Association) Results {
	return NewEngine(cfg, nil).Test(a)
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want ID
		ok   bool
	}{
		{"GORULE:0000013", "GORULE:0000013", true},
		{"gorule:0000013", "GORULE:0000013", true},
		{"13", "GORULE:0000013", true},
		{"0000061", "GORULE:0000061", true},
		{"", "", false},
		{"rule13", "", false},
		{"123456789", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeID(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "13", ID("GORULE:0000013").Short())
}

func TestCatalog(t *testing.T) {
	rules := Catalog()
	assert.Len(t, rules, 24)

	seen := make(map[ID]bool)
	for _, r := range rules {
		assert.False(t, seen[r.ID], "duplicate %s", r.ID)
		seen[r.ID] = true
		assert.NotEmpty(t, r.Title)
		if r.Kind == KindRepair {
			assert.NotNil(t, r.repair, r.ID)
		} else {
			assert.NotNil(t, r.check, r.ID)
		}
	}

	engine := NewEngine(testConfig(), nil)
	ordered := engine.Rules()
	assert.Equal(t, taxonRule, ordered[len(ordered)-1].ID)
	assert.Equal(t, ID("GORULE:0000002"), ordered[0].ID)
}

func TestProteinBinding(t *testing.T) {
	a := record("GO:0005515", "IDA")
	res := run(testConfig(), a)
	assert.Equal(t, Pass, res.All["GORULE:0000002"].Verdict)

	a.Negated = true
	res = run(testConfig(), a)
	assert.Equal(t, Warning, res.All["GORULE:0000002"].Verdict)
	assert.False(t, res.Errored(), "soft failures keep the record")
}

func TestNoDataRoots(t *testing.T) {
	tests := []struct {
		name string
		term string
		code string
		want Verdict
	}{
		{"ND on root", "GO:0003674", "ND", Pass},
		{"ND on non-root", "GO:1234567", "ND", Error},
		{"root without ND", "GO:0003674", "IDA", Error},
		{"neither", "GO:0005515", "IDA", Pass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(testConfig(), record(tt.term, tt.code))
			assert.Equal(t, tt.want, res.All["GORULE:0000011"].Verdict)
			assert.Equal(t, tt.want == Error, res.Errored())
		})
	}
}

func TestAllowedRelation(t *testing.T) {
	t.Run("obsolete function root needs no ontology", func(t *testing.T) {
		a := record("GO:0005554", "IDA")
		a.Aspect = annotation.AspectFunction
		a.Relation = annotation.RelContributesTo
		a.Qualifiers = []annotation.Curie{annotation.RelContributesTo}

		cfg := DefaultConfig()
		cfg.Now = func() time.Time { return frozenNow }
		res := run(cfg, a)

		rr := res.All["GORULE:0000061"]
		assert.Equal(t, Warning, rr.Verdict)
		assert.Equal(t, c("RO:0002327"), rr.Annotation.Relation)
		assert.Equal(t, c("RO:0002327"), res.Annotation.Relation)
		assert.Equal(t, []annotation.Curie{annotation.RelEnables}, res.Annotation.Qualifiers)
		assert.Equal(t, annotation.RelContributesTo, a.Relation, "input is not modified")
		assert.Equal(t, []annotation.Curie{annotation.RelContributesTo}, a.Qualifiers)
	})

	tests := []struct {
		name     string
		term     string
		relation annotation.Curie
		want     Verdict
		repaired annotation.Curie
	}{
		{"function allows contributes_to", "GO:0005515", annotation.RelContributesTo, Pass, annotation.RelContributesTo},
		{"process repairs enables", "GO:0006915", annotation.RelEnables, Warning, annotation.RelInvolvedIn},
		{"component allows part_of", "GO:0005634", annotation.RelPartOf, Pass, annotation.RelPartOf},
		{"component repairs enables", "GO:0005634", annotation.RelEnables, Warning, annotation.RelLocatedIn},
		{"complex repairs located_in", "GO:0005840", annotation.RelLocatedIn, Warning, annotation.RelPartOf},
		{"complex allows colocalizes_with", "GO:0005840", annotation.RelColocalizesWith, Pass, annotation.RelColocalizesWith},
		{"complex rejects enables", "GO:0005840", annotation.RelEnables, Error, annotation.RelEnables},
		{"process root", "GO:0008150", annotation.RelActsUpstreamOf, Warning, annotation.RelInvolvedIn},
		{"obsolete component root", "GO:0008372", annotation.RelPartOf, Warning, annotation.RelIsActiveIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := record(tt.term, "IDA")
			a.Relation = tt.relation
			a.Qualifiers = []annotation.Curie{tt.relation}
			cfg := testConfig()
			only("GORULE:0000061")(&cfg)

			res := run(cfg, a)
			assert.Equal(t, tt.want, res.All["GORULE:0000061"].Verdict)
			assert.Equal(t, tt.repaired, res.Annotation.Relation)
		})
	}
}

func TestTaxonRuleRunsLast(t *testing.T) {
	term := "GO:0005554"
	taxa := NewTaxonTable()
	taxa.Set(annotation.RelContributesTo, c(term), c("NCBITaxon:9606"), false)
	taxa.Set(annotation.RelEnables, c(term), c("NCBITaxon:9606"), true)

	build := func(code string) *annotation.Association {
		a := record(term, code)
		a.Aspect = annotation.AspectFunction
		a.Relation = annotation.RelContributesTo
		a.Qualifiers = []annotation.Curie{annotation.RelContributesTo}
		return a
	}

	cfg := testConfig()
	cfg.Taxa = taxa
	res := run(cfg, build("IDA"))
	assert.Equal(t, Warning, res.All["GORULE:0000061"].Verdict)
	assert.Equal(t, Pass, res.All[taxonRule].Verdict, "the taxon rule sees the repaired relation")
	assert.Equal(t, taxonRule, res.Ordered[len(res.Ordered)-1].Rule)

	// without the repair the inference fails
	cfg = testConfig()
	cfg.Taxa = taxa
	cfg.Enable(taxonRule)
	res = run(cfg, build("IDA"))
	assert.Equal(t, Error, res.All[taxonRule].Verdict)

	res = run(cfg, build("IEA"))
	assert.Equal(t, Warning, res.All[taxonRule].Verdict, "non-experimental evidence only warns")

	a := build("IDA")
	a.Subject.Taxon = c("NCBITaxon:10090")
	assert.Equal(t, Pass, run(cfg, a).All[taxonRule].Verdict, "unknown inference passes")
}

func TestCheckRules(t *testing.T) {
	tests := []struct {
		name   string
		rule   ID
		term   string
		code   string
		mutate func(*annotation.Association)
		config func(*Config)
		want   Verdict
	}{
		{"IEP on process", "GORULE:0000006", "GO:0006915", "IEP", nil, nil, Pass},
		{"IEP on function", "GORULE:0000006", "GO:0005515", "IEP", nil, nil, Error},
		{"HEP on component", "GORULE:0000006", "GO:0005634", "HEP", nil, nil, Error},
		{"IEP on unknown term", "GORULE:0000006", "GO:7777777", "IEP", nil, nil, Pass},

		{"IPI on kinase", "GORULE:0000007", "GO:0016301", "IPI", withFrom("UniProtKB:Q1"), nil, Warning},
		{"IPI on binding", "GORULE:0000007", "GO:0005515", "IPI", withFrom("UniProtKB:Q1"), nil, Pass},
		{"IPI without ontology", "GORULE:0000007", "GO:0016301", "IPI", nil, noOntology, Pass},

		{"do not annotate", "GORULE:0000008", "GO:0005488", "IEA", nil, nil, Warning},
		{"do not manually annotate", "GORULE:0000008", "GO:0009987", "IDA", nil, nil, Warning},
		{"do not manually annotate IEA", "GORULE:0000008", "GO:0009987", "IEA", nil, nil, Pass},

		{"interacting taxon on interspecies part", "GORULE:0000015", "GO:0052031", "IDA", interacting, nil, Pass},
		{"interacting taxon elsewhere", "GORULE:0000015", "GO:0006915", "IDA", interacting, nil, Warning},
		{"no interacting taxon", "GORULE:0000015", "GO:0006915", "IDA", nil, nil, Pass},

		{"IC with GO", "GORULE:0000016", "GO:0005634", "IC", withFrom("GO:0005515"), nil, Pass},
		{"IC without GO", "GORULE:0000016", "GO:0005634", "IC", withFrom("UniProtKB:Q1"), nil, Error},

		{"IDA with with/from", "GORULE:0000017", "GO:0005634", "IDA", withFrom("UniProtKB:Q1"), nil, Warning},
		{"IDA without with/from", "GORULE:0000017", "GO:0005634", "IDA", nil, nil, Pass},

		{"IPI without with/from", "GORULE:0000018", "GO:0005515", "IPI", nil, nil, Warning},
		{"IPI with with/from", "GORULE:0000018", "GO:0005515", "IPI", withFrom("UniProtKB:Q1"), nil, Pass},

		{"IBA outside paint", "GORULE:0000026", "GO:0005515", "IBA", nil, nil, Error},
		{"IBA in paint", "GORULE:0000026", "GO:0005515", "IBA", nil, func(cfg *Config) { cfg.Paint = true }, Pass},

		{"IEA under a year", "GORULE:0000029", "GO:0005515", "IEA", dated(2023, 7, 1), nil, Pass},
		{"IEA over a year", "GORULE:0000029", "GO:0005515", "IEA", dated(2023, 1, 1), nil, Warning},
		{"IEA over two years", "GORULE:0000029", "GO:0005515", "IEA", dated(2021, 1, 1), nil, Error},
		{"old IDA", "GORULE:0000029", "GO:0005515", "IDA", dated(2001, 1, 1), nil, Pass},

		{"GO_PAINT reference", "GORULE:0000030", "GO:0005515", "IDA", refs("GO_PAINT:1"), nil, Warning},
		{"obsolete GO_REF", "GORULE:0000030", "GO:0005515", "IDA", refs("GO_REF:0000001"), goRefs, Warning},
		{"current GO_REF", "GORULE:0000030", "GO:0005515", "IDA", refs("GO_REF:0000002"), goRefs, Pass},

		{"IBA from GO_Central", "GORULE:0000037", "GO:0005515", "IBA", paint, nil, Pass},
		{"IBA from elsewhere", "GORULE:0000037", "GO:0005515", "IBA", refs("PMID:21873635"), nil, Error},
		{"IBA wrong reference", "GORULE:0000037", "GO:0005515", "IBA",
			func(a *annotation.Association) { a.ProvidedBy = PaintProvider }, nil, Error},

		{"ComplexPortal to complex root", "GORULE:0000039", "GO:0032991", "IDA",
			func(a *annotation.Association) { a.Subject.ID = c("ComplexPortal:CPX-1") }, nil, Error},
		{"ComplexPortal to ribosome", "GORULE:0000039", "GO:0005840", "IDA",
			func(a *annotation.Association) { a.Subject.ID = c("ComplexPortal:CPX-1") }, nil, Pass},

		{"IKR not negated", "GORULE:0000042", "GO:0005515", "IKR", nil, nil, Error},
		{"IKR negated", "GORULE:0000042", "GO:0005515", "IKR", negate, nil, Pass},

		{"GO_REF allows IEA", "GORULE:0000043", "GO:0005515", "IEA", refs("GO_REF:0000002"), goRefs, Pass},
		{"GO_REF rejects IDA", "GORULE:0000043", "GO:0005515", "IDA", refs("GO_REF:0000002"), goRefs, Warning},

		{"self binding names self", "GORULE:0000046", "GO:0042803", "IPI", withFrom("UniProtKB:P12345"), nil, Pass},
		{"self binding names other", "GORULE:0000046", "GO:0042803", "IPI", withFrom("UniProtKB:Q1"), nil, Warning},
		{"self binding without with/from", "GORULE:0000046", "GO:0042803", "IDA", nil, nil, Pass},

		{"ISS self referential", "GORULE:0000050", "GO:0005515", "ISS", withFrom("UniProtKB:P12345"), nil, Warning},
		{"ISS other", "GORULE:0000050", "GO:0005515", "ISS", withFrom("UniProtKB:Q1"), nil, Pass},

		{"two PMIDs", "GORULE:0000055", "GO:0005515", "IDA", refs("PMID:1", "PMID:2"), nil, Warning},
		{"PMID and GO_REF", "GORULE:0000055", "GO:0005515", "IDA", refs("PMID:1", "GO_REF:0000002"), nil, Pass},

		{"group filters evidence", "GORULE:0000057", "GO:0005515", "IEA", nil, groups, Error},
		{"group filters reference", "GORULE:0000057", "GO:0005515", "IDA", refs("PMID:99"), groups, Error},
		{"group filters evidence with reference", "GORULE:0000057", "GO:0005515", "ISS", refs("GO_REF:0000024"), groups, Error},
		{"group filters property", "GORULE:0000057", "GO:0005515", "IDA",
			func(a *annotation.Association) {
				a.Properties = []annotation.Property{{Key: "model-state", Value: "development"}}
			}, groups, Error},
		{"group passes", "GORULE:0000057", "GO:0005515", "ISS", nil, groups, Pass},
		{"other group", "GORULE:0000057", "GO:0005515", "IEA",
			func(a *annotation.Association) { a.ProvidedBy = "MGI" }, groups, Pass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := record(tt.term, tt.code)
			if tt.mutate != nil {
				tt.mutate(a)
			}
			cfg := testConfig()
			if tt.config != nil {
				tt.config(&cfg)
			}
			only(tt.rule)(&cfg)
			res := run(cfg, a)
			rr := res.All[tt.rule]
			assert.Equal(t, tt.want, rr.Verdict, rr.Message)
			if tt.want != Pass {
				assert.NotEmpty(t, rr.Message)
			}
		})
	}
}

func withFrom(ids ...string) func(*annotation.Association) {
	return func(a *annotation.Association) {
		for _, id := range ids {
			a.Evidence.WithFrom = append(a.Evidence.WithFrom, annotation.ConjunctiveSet{c(id)})
		}
	}
}

func refs(ids ...string) func(*annotation.Association) {
	return func(a *annotation.Association) {
		a.Evidence.References = nil
		for _, id := range ids {
			a.Evidence.References = append(a.Evidence.References, c(id))
		}
	}
}

func dated(y, m, d int) func(*annotation.Association) {
	return func(a *annotation.Association) { a.Date = annotation.Date{Year: y, Month: m, Day: d} }
}

func interacting(a *annotation.Association) { a.InteractingTaxon = c("NCBITaxon:562") }

func negate(a *annotation.Association) { a.Negated = true }

func paint(a *annotation.Association) {
	a.ProvidedBy = PaintProvider
	a.Evidence.References = []annotation.Curie{paintReference, c("PANTHER:PTN000001")}
}

func noOntology(cfg *Config) { cfg.Ontology = nil }

func goRefs(cfg *Config) {
	cfg.GoRefs = map[annotation.Curie]GoRef{
		c("GO_REF:0000001"): {ID: c("GO_REF:0000001"), IsObsolete: true},
		c("GO_REF:0000002"): {ID: c("GO_REF:0000002"), EvidenceCodes: []string{"ECO:0000256", "IEA"}},
	}
}

func groups(cfg *Config) {
	cfg.Groups = []Group{{
		ID: "uniprot",
		FilterOut: GroupFilter{
			Evidence:          []string{"IEA"},
			References:        []annotation.Curie{c("PMID:99")},
			EvidenceReference: []EvidenceReference{{Evidence: "ISS", Reference: c("GO_REF:0000024")}},
			Properties:        []string{"model-state=development"},
		},
	}}
}

func TestAspectRepair(t *testing.T) {
	a := record("GO:0005634", "IDA")
	a.Aspect = annotation.AspectProcess
	cfg := testConfig()
	only("GORULE:0000028")(&cfg)

	res := run(cfg, a)
	assert.Equal(t, Warning, res.All["GORULE:0000028"].Verdict)
	assert.Equal(t, annotation.AspectComponent, res.Annotation.Aspect)
	assert.Equal(t, annotation.AspectProcess, a.Aspect)

	cfg.Ontology = nil
	res = run(cfg, a)
	assert.Equal(t, Pass, res.All["GORULE:0000028"].Verdict, "no ontology, no constraint")
}

func TestExtensionConstraintsOnlyOnImport(t *testing.T) {
	a := record("GO:0005515", "IDA")
	a.ObjectExtensions = []annotation.ExtensionConjunction{
		{{Relation: c("RO:0002233"), Term: c("UniProtKB:Q1")}},
		{{Relation: c("RO:0002233"), Term: c("CHEBI:15422")}},
		{{Relation: c("RO:0002233"), Term: c("UniProtKB:Q1")}, {Relation: c("RO:0002233"), Term: c("UniProtKB:Q2")}},
		{{Relation: c("BFO:0000066"), Term: c("CL:0000084")}},
	}
	cfg := testConfig()
	cfg.ExtensionConstraints = []ExtensionConstraint{
		{Relation: c("RO:0002233"), Namespaces: []string{"UniProtKB"}, PrimaryRoot: c("GO:0003674"), Cardinality: 1},
		{Relation: c("BFO:0000066"), Namespaces: []string{"CL"}, PrimaryRoot: c("GO:0008150")},
	}

	res := run(cfg, a)
	assert.Equal(t, Pass, res.All["GORULE:0000058"].Verdict, "outside the import context")
	assert.Len(t, res.Annotation.ObjectExtensions, 4)

	cfg.Contexts = []string{ContextImport}
	res = run(cfg, a)
	rr := res.All["GORULE:0000058"]
	assert.Equal(t, Warning, rr.Verdict)
	require.Len(t, res.Annotation.ObjectExtensions, 1)
	assert.Equal(t, c("UniProtKB:Q1"), res.Annotation.ObjectExtensions[0][0].Term)
	assert.Len(t, a.ObjectExtensions, 4, "input is not modified")

	again := run(cfg, res.Annotation)
	assert.Equal(t, Pass, again.All["GORULE:0000058"].Verdict)
}

func TestDisabledRulesAreNotInvoked(t *testing.T) {
	called := false
	boom := Check("GORULE:0000999", "test", Hard, func(*Context, *annotation.Association) Outcome {
		called = true
		return fail("boom")
	})
	cfg := testConfig()
	cfg.Enable("GORULE:0000002")
	res := NewEngineWithRules(cfg, []Rule{boom}, nil).Test(record("GO:0005515", "IDA"))
	assert.False(t, called)
	assert.Equal(t, Pass, res.All["GORULE:0000999"].Verdict)
}

func TestPanickingRuleIsContained(t *testing.T) {
	bad := Check("GORULE:0000998", "test", Soft, func(*Context, *annotation.Association) Outcome {
		panic("nil map")
	})
	a := record("GO:0005515", "IDA")
	res := NewEngineWithRules(testConfig(), []Rule{bad}, nil).Test(a)
	assert.Equal(t, Error, res.All["GORULE:0000998"].Verdict)
	assert.Same(t, a, res.Annotation)
}

func TestIdempotence(t *testing.T) {
	a := record("GO:0005554", "IDA")
	a.Aspect = annotation.AspectFunction
	a.Relation = annotation.RelContributesTo
	a.Qualifiers = []annotation.Curie{annotation.RelContributesTo}

	first := run(testConfig(), a)
	require.False(t, first.Errored())
	second := run(testConfig(), first.Annotation)
	assert.Equal(t, first.Annotation, second.Annotation)
	assert.Empty(t, second.Failures())
}

func TestResultsRecord(t *testing.T) {
	a := record("GO:0003674", "IDA")
	a.Negated = true
	res := run(testConfig(), a)
	require.True(t, res.Errored())

	rep := report.New()
	res.Record(rep, "line")
	assert.Equal(t, 1, rep.RuleCount("GORULE:0000011", report.Error))
	assert.Equal(t, len(res.Failures()), rep.Count(report.Error)+rep.Count(report.Warning))
	for _, m := range rep.Messages() {
		assert.Equal(t, "NCBITaxon:9606", m.Taxon)
		assert.Equal(t, "GO:0003674", m.Obj)
	}
}
