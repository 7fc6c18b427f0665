// Package config loads gaffer's configuration from defaults, TOML files and
// GAFFER_* environment variables using Viper.
package config

// Config represents the gaffer configuration
type Config struct {
	Parser   ParserConfig   `mapstructure:"parser"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Report   ReportConfig   `mapstructure:"report"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Database DatabaseConfig `mapstructure:"database"`
	Output   OutputConfig   `mapstructure:"output"`
}

// ParserConfig configures line parsing
type ParserConfig struct {
	Format           string   `mapstructure:"format"`            // gaf or gpad; empty detects from the version header
	Version          string   `mapstructure:"version"`           // forces a format version (e.g. "2.2")
	EntityIDSpaces   []string `mapstructure:"entity_idspaces"`   // allowed subject prefixes, empty allows any
	ClassIDSpaces    []string `mapstructure:"class_idspaces"`    // allowed term prefixes, empty allows any
	Taxa             []string `mapstructure:"taxa"`              // allowed subject taxa, empty allows any
	ExcludedEvidence []string `mapstructure:"excluded_evidence"` // GAF codes or ECO classes to skip
	RepairObsolete   bool     `mapstructure:"repair_obsolete"`   // replace obsolete terms with their single replacement (default: true)
	AllowUnmappedECO bool     `mapstructure:"allow_unmapped_eco"`
}

// RulesConfig selects which GO rules run
type RulesConfig struct {
	Profile  string   `mapstructure:"profile"`  // TOML rule profile
	Enabled  []string `mapstructure:"enabled"`  // rule IDs (GORULE:0000011 or 11); empty runs all
	Contexts []string `mapstructure:"contexts"` // active run contexts (e.g. "import")
	Paint    bool     `mapstructure:"paint"`    // PAINT (IBA) submission run
}

// ReportConfig configures the validation report
type ReportConfig struct {
	Group       string `mapstructure:"group"`        // submitting group shown in the report
	Format      string `mapstructure:"format"`       // markdown or json (default: markdown)
	Path        string `mapstructure:"path"`         // report file; empty skips writing one
	MaxMessages int    `mapstructure:"max_messages"` // stored message cap (default: 10000)
}

// MetadataConfig points at the reference data rules and parsers consult
type MetadataConfig struct {
	Path     string `mapstructure:"path"`     // groups, GO_REFs, extension constraints, taxon checks (YAML)
	Ontology string `mapstructure:"ontology"` // GO in OBO Graphs JSON
	ECO      string `mapstructure:"eco"`      // GAF code to ECO table; empty uses the built-in one
}

// DatabaseConfig configures the SQLite run store
type DatabaseConfig struct {
	Path      string `mapstructure:"path"`       // empty disables the store
	BatchSize int    `mapstructure:"batch_size"` // accepted records per transaction (default: 500)
}

// OutputConfig configures written annotation files
type OutputConfig struct {
	Format      string `mapstructure:"format"`       // empty keeps the input format
	Version     string `mapstructure:"version"`      // empty keeps the input version
	GeneratedBy string `mapstructure:"generated_by"` // !generated-by header value
	Metrics     string `mapstructure:"metrics"`      // Prometheus textfile path; empty disables
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// ProjectConfigName is the per-project configuration file searched for in
// the working directory and its parents.
const ProjectConfigName = "gaffer.toml"

// EnvPrefix prefixes environment overrides (GAFFER_REPORT_GROUP etc.).
const EnvPrefix = "GAFFER"
