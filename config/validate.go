package config

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/parser"
	"github.com/teranos/gaffer/rules"
)

// Validate checks that the configuration is valid. Every error wraps
// errors.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validateFormatVersion("parser", c.Parser.Format, c.Parser.Version); err != nil {
		return err
	}
	if err := validateFormatVersion("output", c.Output.Format, c.Output.Version); err != nil {
		return err
	}

	known := make(map[rules.ID]bool)
	for _, r := range rules.Catalog() {
		known[r.ID] = true
	}
	for _, raw := range c.Rules.Enabled {
		id, ok := rules.NormalizeID(raw)
		if !ok || !known[id] {
			return errors.Wrapf(errors.ErrInvalidConfig, "rules.enabled: unknown rule %q", raw)
		}
	}

	switch c.Report.Format {
	case "markdown", "json":
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "report.format must be markdown or json, got %q", c.Report.Format)
	}
	// 0 keeps no messages (counts still move), negative is invalid
	if c.Report.MaxMessages < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "report.max_messages must be >= 0, got %d", c.Report.MaxMessages)
	}

	// 0 = default batch size
	if c.Database.BatchSize < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "database.batch_size must be >= 0, got %d", c.Database.BatchSize)
	}
	return nil
}

func validateFormatVersion(section, format, version string) error {
	var f parser.Format
	if format != "" {
		var err error
		if f, err = parser.ParseFormat(format); err != nil {
			return errors.Wrapf(errors.ErrInvalidConfig, "%s.format: %v", section, err)
		}
	}
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidConfig, "%s.version %q: %v", section, version, err)
	}
	if f != "" && !parser.Supported(f, v) {
		return errors.Wrapf(errors.ErrInvalidConfig, "%s.version: %s %s is not supported", section, f, version)
	}
	return nil
}
