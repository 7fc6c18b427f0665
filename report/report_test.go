package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageCounting(t *testing.T) {
	r := New(WithGroup("pombase", "pombase.gaf"))
	r.AddHeader("!gaf-version: 2.2")
	r.AddLine()
	r.Error(TypeWrongColumnCount, "a\tb", "", "expected 17 columns, got 2")
	r.AddSkipped()
	r.AddLine()
	r.Warning(TypeInvalidDate, "line", "PomBase:SPAC1", "date 2021-1-3 required fallback parsing")
	r.RuleMessage(Warning, "GORULE:0000061", "line", "GO:0005554", "NCBITaxon:4896", "relation repaired")
	r.AddAssociation("PomBase:SPAC1", "GO:0005554", "NCBITaxon:4896")

	assert.Equal(t, 1, r.Count(Error))
	assert.Equal(t, 2, r.Count(Warning))
	assert.Equal(t, 0, r.Count(Fatal))
	assert.Equal(t, 1, r.TypeCount(TypeInvalidDate))
	assert.Equal(t, 1, r.RuleCount("GORULE:0000061", Warning))
	assert.Equal(t, 3, r.Lines())
	assert.Equal(t, 1, r.Skipped())
	assert.Equal(t, 1, r.Associations())
	assert.False(t, r.HasFatal())

	msgs := r.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, 2, msgs[0].LineNo)
	assert.Equal(t, 3, msgs[2].LineNo)
	assert.Equal(t, "GORULE:0000061", msgs[2].Rule)
	assert.Equal(t, TypeRule, msgs[2].Type)
}

func TestMessageCap(t *testing.T) {
	r := New(WithMaxMessages(2))
	for i := 0; i < 5; i++ {
		r.Warning(TypeInvalidID, "", "X:1", "loose id")
	}
	assert.Len(t, r.Messages(), 2)
	assert.Equal(t, 5, r.Count(Warning), "counts keep growing past the cap")
	assert.Equal(t, 3, r.Dropped())

	none := New(WithMaxMessages(0))
	none.Error(TypeInvalidID, "", "", "x")
	assert.Empty(t, none.Messages())
	assert.Equal(t, 1, none.Count(Error))
}

func TestMessagesReturnsCopy(t *testing.T) {
	r := New()
	r.Info(TypeEvidenceFiltered, "", "", "filtered")
	msgs := r.Messages()
	msgs[0].Message = "changed"
	assert.Equal(t, "filtered", r.Messages()[0].Message)
}

func TestSamples(t *testing.T) {
	r := New()
	for _, id := range []string{"A:1", "A:2", "A:1", "A:3", "A:4", "A:5", "A:6"} {
		r.AddAssociation(id, "GO:1", "")
	}
	s := r.Summarize()
	assert.Equal(t, 6, s.Subjects.Distinct)
	assert.Equal(t, []string{"A:1", "A:2", "A:3", "A:4", "A:5"}, s.Subjects.Samples)
	assert.Equal(t, 1, s.Objects.Distinct)
	assert.Equal(t, 0, s.Taxa.Distinct)
	assert.Equal(t, 7, s.Associations)
}

func TestDistinctCountIsBounded(t *testing.T) {
	r := New(WithMaxDistinct(3))
	for _, id := range []string{"A:1", "A:2", "A:3", "A:1", "A:4", "A:5"} {
		r.AddAssociation(id, "GO:1", "NCBITaxon:9606")
	}
	s := r.Summarize()
	assert.Equal(t, 3, s.Subjects.Distinct)
	assert.True(t, s.Subjects.Capped)
	assert.Equal(t, []string{"A:1", "A:2", "A:3"}, s.Subjects.Samples)
	assert.False(t, s.Objects.Capped)
	assert.Equal(t, 6, s.Associations, "associations are counted past the cap")

	md := r.Markdown()
	assert.Contains(t, md, "at least 3 distinct")
	assert.Contains(t, md, ": 1 distinct")

	data, err := json.Marshal(s.Objects)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "capped")
}

func populated() *Report {
	r := New(WithGroup("mgi", "mgi.gaf"))
	r.AddHeader("!gaf-version: 2.1")
	r.AddLine()
	r.RuleMessage(Error, "GORULE:0000011", "MGI\tMGI:1", "GO:1234567", "NCBITaxon:10090", "ND used with non-root term")
	r.RuleMessage(Warning, "GORULE:0000002", "MGI\tMGI:2", "GO:0005515", "NCBITaxon:10090", "NOT with protein binding")
	r.Warning(TypeObsoleteClass, "MGI\tMGI:3", "GO:0000001", "replaced with GO:0005634")
	r.AddAssociation("MGI:MGI:2", "GO:0005515", "NCBITaxon:10090")
	return r
}

func TestMarkdown(t *testing.T) {
	r := populated()
	md := r.Markdown()

	assert.Contains(t, md, "# Group: mgi")
	assert.Contains(t, md, "* Associations: 1")
	assert.Contains(t, md, "* Lines in file (incl headers): 2")
	assert.Contains(t, md, "### GORULE:0000002")
	assert.Contains(t, md, "### GORULE:0000011")
	assert.Contains(t, md, "* total: 1 errors, 0 warnings")
	assert.Contains(t, md, "### OBSOLETE_CLASS")
	assert.Contains(t, md, "`MGI\\tMGI:1`")
	assert.Contains(t, md, "!gaf-version: 2.1")
	assert.NotContains(t, md, "### VIOLATES_GO_RULE")

	assert.Less(t, strings.Index(md, "GORULE:0000002"), strings.Index(md, "GORULE:0000011"))
	assert.Equal(t, md, r.Markdown(), "rendering is a pure function of state")
}

func TestJSON(t *testing.T) {
	r := populated()
	b, err := r.JSON()
	require.NoError(t, err)

	again, err := r.JSON()
	require.NoError(t, err)
	assert.Equal(t, b, again)

	var s Summary
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, "mgi", s.Group)
	assert.Equal(t, 1, s.Levels[Error])
	assert.Equal(t, 2, s.Levels[Warning])
	require.Len(t, s.Rules, 2)
	assert.Equal(t, "GORULE:0000002", s.Rules[0].Rule)
	assert.Equal(t, 1, s.Rules[1].Errors)
	assert.Len(t, s.Messages, 3)
}

func TestEmptyReportRenders(t *testing.T) {
	r := New()
	assert.Contains(t, r.Markdown(), "# Group: unknown")
	b, err := r.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"messages": []`)
}
