package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/gaffer/pipeline"
	"github.com/teranos/gaffer/report"
)

// SetDefaults configures default values for all configuration options.
// Every key gets a default, even an empty one, so that AutomaticEnv
// overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	// Parser defaults
	v.SetDefault("parser.format", "")
	v.SetDefault("parser.version", "")
	v.SetDefault("parser.entity_idspaces", []string{})
	v.SetDefault("parser.class_idspaces", []string{})
	v.SetDefault("parser.taxa", []string{})
	v.SetDefault("parser.excluded_evidence", []string{})
	v.SetDefault("parser.repair_obsolete", true)
	v.SetDefault("parser.allow_unmapped_eco", false)

	// Rules defaults
	v.SetDefault("rules.profile", "")
	v.SetDefault("rules.enabled", []string{})
	v.SetDefault("rules.contexts", []string{})
	v.SetDefault("rules.paint", false)

	// Report defaults
	v.SetDefault("report.group", "")
	v.SetDefault("report.format", "markdown")
	v.SetDefault("report.path", "")
	v.SetDefault("report.max_messages", report.DefaultMaxMessages)

	// Metadata defaults
	v.SetDefault("metadata.path", "")
	v.SetDefault("metadata.ontology", "")
	v.SetDefault("metadata.eco", "")

	// Database defaults
	v.SetDefault("database.path", "")
	v.SetDefault("database.batch_size", pipeline.DefaultBatchSize)

	// Output defaults
	v.SetDefault("output.format", "")
	v.SetDefault("output.version", "")
	v.SetDefault("output.generated_by", "gaffer")
	v.SetDefault("output.metrics", "")
}

// BindEnvVars explicitly binds the paths most often set from the environment
// in CI pipelines.
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "GAFFER_DATABASE_PATH")
	v.BindEnv("metadata.ontology", "GAFFER_ONTOLOGY")
	v.BindEnv("metadata.path", "GAFFER_METADATA")
}
