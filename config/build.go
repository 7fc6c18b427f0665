package config

import (
	"os"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/ontology"
	"github.com/teranos/gaffer/parser"
	"github.com/teranos/gaffer/rules"
)

// Resources is the reference data loaded from the metadata section.
type Resources struct {
	// Graph is nil when no ontology is configured.
	Graph *ontology.Graph
	ECO   *eco.Map
}

// Ontology returns the graph as a Lookup, or a nil interface without one.
func (r *Resources) Ontology() ontology.Lookup {
	if r == nil || r.Graph == nil {
		return nil
	}
	return r.Graph
}

// LoadResources reads the ontology and ECO table named in the metadata
// section.
func (c *Config) LoadResources(log *zap.SugaredLogger) (*Resources, error) {
	log = logger.OrNop(log)
	res := &Resources{ECO: eco.Default()}

	if path := c.Metadata.ECO; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open ECO mapping %s", path)
		}
		defer f.Close()
		m, err := eco.Load(f)
		if err != nil {
			return nil, errors.Wrapf(err, "ECO mapping %s", path)
		}
		res.ECO = m
	}

	if path := c.Metadata.Ontology; path != "" {
		g, err := ontology.LoadFile(path, log)
		if err != nil {
			return nil, err
		}
		res.Graph = g
	}
	return res, nil
}

// ParserConfig builds the parser configuration.
func (c *Config) ParserConfig(res *Resources) parser.Config {
	cfg := parser.DefaultConfig()
	cfg.Ontology = res.Ontology()
	if res != nil && res.ECO != nil {
		cfg.ECO = res.ECO
	}
	cfg.EntityIDSpaces = c.Parser.EntityIDSpaces
	cfg.ClassIDSpaces = c.Parser.ClassIDSpaces
	cfg.Taxa = c.Parser.Taxa
	cfg.ExcludedEvidence = c.Parser.ExcludedEvidence
	cfg.RepairObsolete = c.Parser.RepairObsolete
	cfg.AllowUnmappedECO = c.Parser.AllowUnmappedECO
	cfg.Version = c.Parser.Version
	return cfg
}

// RulesConfig builds the rule configuration: metadata file first, then the
// profile, then rules.enabled and rules.contexts on top.
func (c *Config) RulesConfig(res *Resources) (rules.Config, error) {
	cfg := rules.DefaultConfig()
	cfg.Ontology = res.Ontology()
	if res != nil && res.ECO != nil {
		cfg.ECO = res.ECO
	}

	if path := c.Metadata.Path; path != "" {
		m, err := rules.LoadMetadataFile(path)
		if err != nil {
			return cfg, err
		}
		m.Apply(&cfg)
	}

	if path := c.Rules.Profile; path != "" {
		p, err := rules.LoadProfileFile(path)
		if err != nil {
			return cfg, err
		}
		if err := p.Apply(&cfg); err != nil {
			return cfg, err
		}
	}

	if len(c.Rules.Enabled) > 0 {
		ids := make([]rules.ID, 0, len(c.Rules.Enabled))
		for _, raw := range c.Rules.Enabled {
			id, ok := rules.NormalizeID(raw)
			if !ok {
				return cfg, errors.Wrapf(errors.ErrInvalidConfig, "rules.enabled: unknown rule %q", raw)
			}
			ids = append(ids, id)
		}
		cfg.Enabled = nil
		cfg.Enable(ids...)
	}
	cfg.Contexts = append(cfg.Contexts, c.Rules.Contexts...)
	cfg.Paint = cfg.Paint || c.Rules.Paint
	return cfg, nil
}

// InputFormat is the forced input format, or "" to detect it.
func (c *Config) InputFormat() (parser.Format, error) {
	if c.Parser.Format == "" {
		return "", nil
	}
	return parser.ParseFormat(c.Parser.Format)
}

// OutputFormat returns the configured output format and version. Empty
// values mean "same as the input".
func (c *Config) OutputFormat() (parser.Format, *semver.Version, error) {
	var f parser.Format
	if c.Output.Format != "" {
		var err error
		if f, err = parser.ParseFormat(c.Output.Format); err != nil {
			return "", nil, err
		}
	}
	if c.Output.Version == "" {
		return f, nil, nil
	}
	v, err := semver.NewVersion(c.Output.Version)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInvalidConfig, "output.version %q: %v", c.Output.Version, err)
	}
	return f, v, nil
}
