package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/parser"
	"github.com/teranos/gaffer/rules"
)

var c = annotation.MustCurie

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), DefaultDirPermissions))
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper: no user, system or project files
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.True(t, cfg.Parser.RepairObsolete)
	assert.Empty(t, cfg.Parser.Format)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.Equal(t, 10000, cfg.Report.MaxMessages)
	assert.Equal(t, 500, cfg.Database.BatchSize)
	assert.Equal(t, "gaffer", cfg.Output.GeneratedBy)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gaffer.toml", `
[parser]
format = "gaf"
taxa = ["9606", "10090"]
repair_obsolete = false

[rules]
enabled = ["11", "GORULE:0000061"]
contexts = ["import"]

[report]
group = "mgi"
format = "json"

[output]
format = "gpad"
version = "2.0"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gaf", cfg.Parser.Format)
	assert.Equal(t, []string{"9606", "10090"}, cfg.Parser.Taxa)
	assert.False(t, cfg.Parser.RepairObsolete)
	assert.Equal(t, []string{"11", "GORULE:0000061"}, cfg.Rules.Enabled)
	assert.Equal(t, "mgi", cfg.Report.Group)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Equal(t, 10000, cfg.Report.MaxMessages, "defaults fill unset keys")
	require.NoError(t, cfg.Validate())

	f, err := cfg.InputFormat()
	require.NoError(t, err)
	assert.Equal(t, parser.FormatGAF, f)

	of, ov, err := cfg.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, parser.FormatGPAD, of)
	assert.Equal(t, "2.0", ov.Original())
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.toml", "[parser\nformat = ")
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestNewViper_Precedence(t *testing.T) {
	dir := t.TempDir()
	user := writeFile(t, dir, "user.toml", `
[report]
group = "user"
max_messages = 50

[database]
path = "user.db"
`)
	project := writeFile(t, dir, "project.toml", `
[report]
group = "project"
`)
	missing := filepath.Join(dir, "missing.toml")

	t.Setenv("GAFFER_DATABASE_PATH", "env.db")
	t.Setenv("GAFFER_ONTOLOGY", "go.json")

	v, files := newViper([]string{missing, user, project})
	assert.Equal(t, []string{user, project}, files)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, "project", cfg.Report.Group, "later files win")
	assert.Equal(t, 50, cfg.Report.MaxMessages, "earlier files still contribute")
	assert.Equal(t, "env.db", cfg.Database.Path, "environment wins over files")
	assert.Equal(t, "go.json", cfg.Metadata.Ontology)
}

func TestNewViper_AutomaticEnv(t *testing.T) {
	t.Setenv("GAFFER_REPORT_GROUP", "pombase")
	t.Setenv("GAFFER_PARSER_REPAIR_OBSOLETE", "false")

	v, _ := newViper(nil)
	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, "pombase", cfg.Report.Group)
	assert.False(t, cfg.Parser.RepairObsolete)
}

func TestFindProjectConfig(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	want := writeFile(t, root, ProjectConfigName, "[report]\ngroup = \"x\"\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, DefaultDirPermissions))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	assert.Equal(t, want, findProjectConfig())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := LoadWithViper(v)
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"gpa alias", func(c *Config) { c.Parser.Format = "gpa" }, false},
		{"unknown input format", func(c *Config) { c.Parser.Format = "gpi" }, true},
		{"bad version", func(c *Config) { c.Parser.Version = "two" }, true},
		{"unsupported version", func(c *Config) { c.Parser.Format, c.Parser.Version = "gaf", "3.0" }, true},
		{"version without format", func(c *Config) { c.Parser.Version = "2.2" }, false},
		{"unknown output format", func(c *Config) { c.Output.Format = "csv" }, true},
		{"short rule id", func(c *Config) { c.Rules.Enabled = []string{"11", "0000061"} }, false},
		{"unknown rule", func(c *Config) { c.Rules.Enabled = []string{"GORULE:0000099"} }, true},
		{"report format", func(c *Config) { c.Report.Format = "html" }, true},
		{"zero messages is valid", func(c *Config) { c.Report.MaxMessages = 0 }, false},
		{"negative messages", func(c *Config) { c.Report.MaxMessages = -1 }, true},
		{"negative batch", func(c *Config) { c.Database.BatchSize = -5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}

func TestMarshal(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("report.group", "mgi")
	settings := v.AllSettings()

	data, err := Marshal(settings, "toml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "[report]")
	assert.Regexp(t, `group = ['"]mgi['"]`, string(data))

	data, err = Marshal(settings, "json")
	require.NoError(t, err)
	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "mgi", decoded["report"]["group"])
	assert.Equal(t, float64(500), decoded["database"]["batch_size"])

	data, err = Marshal(settings, "yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "group: mgi")

	_, err = Marshal(settings, "ini")
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestMarshal_RoundTrip(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("parser.taxa", []string{"9606"})
	data, err := Marshal(v.AllSettings(), "toml")
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "shown.toml", string(data))
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"9606"}, cfg.Parser.Taxa)
	assert.True(t, cfg.Parser.RepairObsolete)
}

const ontologyJSON = `{"graphs": [{"id": "go", "nodes": [
  {"id": "http://purl.obolibrary.org/obo/GO_0005575", "lbl": "cellular_component", "type": "CLASS",
   "meta": {"basicPropertyValues": [{"pred": "http://www.geneontology.org/formats/oboInOwl#hasOBONamespace", "val": "cellular_component"}]}}
], "edges": []}]}`

func TestResources(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Metadata: MetadataConfig{
		Ontology: writeFile(t, dir, "go.json", ontologyJSON),
		ECO:      writeFile(t, dir, "eco.tsv", "# code\tref\teco\nIDA\tDefault\tECO:0000314\n"),
	}}

	res, err := cfg.LoadResources(nil)
	require.NoError(t, err)
	require.NotNil(t, res.Ontology())
	assert.Equal(t, "cellular_component", res.Ontology().Namespace(c("GO:0005575")))
	assert.Equal(t, 1, res.ECO.Codes())

	pcfg := cfg.ParserConfig(res)
	assert.Same(t, res.ECO, pcfg.ECO)
	assert.NotNil(t, pcfg.Ontology)
}

func TestResources_Empty(t *testing.T) {
	res, err := (&Config{}).LoadResources(nil)
	require.NoError(t, err)
	assert.Nil(t, res.Ontology(), "no ontology is a nil interface, not a nil graph")
	assert.NotNil(t, res.ECO)

	_, err = (&Config{Metadata: MetadataConfig{Ontology: "/nonexistent/go.json"}}).LoadResources(nil)
	assert.Error(t, err)
}

func TestRulesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Metadata: MetadataConfig{Path: writeFile(t, dir, "metadata.yaml", `
groups:
  - id: MGI
    filter_out:
      evidence: [IEA]
`)},
		Rules: RulesConfig{
			Profile: writeFile(t, dir, "import.toml", "name = \"import\"\ncontexts = [\"import\"]\ndisabled = [\"29\"]\n"),
			Paint:   true,
		},
	}

	rcfg, err := cfg.RulesConfig(&Resources{})
	require.NoError(t, err)
	require.Len(t, rcfg.Groups, 1)
	assert.Equal(t, "MGI", rcfg.Groups[0].ID)
	assert.Contains(t, rcfg.Contexts, rules.ContextImport)
	assert.True(t, rcfg.Paint)
	assert.Len(t, rcfg.Enabled, len(rules.Catalog())-1)
	assert.False(t, rcfg.Enabled["GORULE:0000029"])

	cfg.Rules.Enabled = []string{"11"}
	rcfg, err = cfg.RulesConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, map[rules.ID]bool{"GORULE:0000011": true}, rcfg.Enabled, "rules.enabled replaces the profile selection")

	cfg.Rules.Enabled = []string{"eleven"}
	_, err = cfg.RulesConfig(nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}
