package config

import (
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/gaffer/errors"
)

// Marshal renders settings (usually GetViper().AllSettings()) as toml, json
// or yaml. Keys keep their configuration file spelling.
func Marshal(settings map[string]interface{}, format string) ([]byte, error) {
	switch format {
	case "toml":
		data, err := toml.Marshal(settings)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to TOML")
		}
		return data, nil
	case "json":
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to JSON")
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(settings)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to YAML")
		}
		return data, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidConfig, "unsupported format: %s (supported: toml, json, yaml)", format)
}
