package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/parser"
	"github.com/teranos/gaffer/report"
)

// gpadRecord parses one GPAD 2.0 line involving UniProtKB:P12345 in term
// with the given ECO class and date.
func gpadRecord(t *testing.T, term, class, date string) *annotation.Association {
	t.Helper()
	cfg := parser.DefaultConfig()
	cfg.Version = "2.0"
	p, err := parser.NewGPAD(cfg, report.New(), nil)
	require.NoError(t, err)

	line := strings.Join([]string{
		"UniProtKB:P12345", "", "RO:0002331", term, "GO_REF:0000019", class,
		"", "", date, "Ensembl", "", "",
	}, "\t")
	res := p.ParseLine(line)
	require.False(t, res.Skipped, "line skipped: %v", res.Problems)
	require.Len(t, res.Associations, 1)
	return res.Associations[0]
}

func TestAutomaticEvidenceFromGPAD(t *testing.T) {
	automatic := []string{"ECO:0000501", "ECO:0000256", "ECO:0007669", "ECO:0000265", "ECO:0000249"}

	for _, class := range automatic {
		t.Run(class, func(t *testing.T) {
			cfg := testConfig()
			only("GORULE:0000029")(&cfg)
			old := run(cfg, gpadRecord(t, "GO:0006915", class, "2019-01-01"))
			assert.Equal(t, Error, old.All["GORULE:0000029"].Verdict, "IEA dated 2019 is over two years old")

			recent := run(cfg, gpadRecord(t, "GO:0006915", class, "2024-01-01"))
			assert.Equal(t, Pass, recent.All["GORULE:0000029"].Verdict)

			cfg = testConfig()
			only("GORULE:0000008")(&cfg)
			res := run(cfg, gpadRecord(t, "GO:0009987", class, "2024-01-01"))
			assert.Equal(t, Pass, res.All["GORULE:0000008"].Verdict, "automatic annotations may use do-not-manually-annotate terms")
		})
	}
}

func TestManualEvidenceFromGPAD(t *testing.T) {
	cfg := testConfig()
	only("GORULE:0000029")(&cfg)
	res := run(cfg, gpadRecord(t, "GO:0006915", "ECO:0000031", "2019-01-01"))
	assert.Equal(t, Pass, res.All["GORULE:0000029"].Verdict, "old manual annotations are kept")

	cfg = testConfig()
	only("GORULE:0000008")(&cfg)
	res = run(cfg, gpadRecord(t, "GO:0009987", "ECO:0000031", "2024-01-01"))
	assert.Equal(t, Warning, res.All["GORULE:0000008"].Verdict)
}
