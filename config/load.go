package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/gaffer/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper
var loadedFiles []string

// Load reads the gaffer configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return globalConfig, nil
}

// GetViper returns the Viper instance for key level access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path, on top of the
// defaults. Environment variables are not consulted.
func LoadFromFile(configPath string) (*Config, error) {
	v, err := ViperFromFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	return cfg, nil
}

// ViperFromFile returns a Viper instance holding the defaults and one file.
func ViperFromFile(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return v, nil
}

// Files returns the configuration files merged by Load, lowest precedence
// first.
func Files() []string {
	initViper()
	return append([]string(nil), loadedFiles...)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	loadedFiles = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}
	v, files := newViper(configPaths())
	viperInstance = v
	loadedFiles = files
	return v
}

// newViper layers defaults, the given files (in order) and GAFFER_* variables.
// It returns the files that were actually merged.
func newViper(paths []string) (*viper.Viper, []string) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)

	SetDefaults(v)

	var merged []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		file := viper.New()
		file.SetConfigFile(path)
		file.SetConfigType("toml")
		if err := file.ReadInConfig(); err != nil {
			continue
		}
		// MergeConfigMap keeps environment variables above file values
		if err := v.MergeConfigMap(file.AllSettings()); err == nil {
			merged = append(merged, path)
		}
	}
	return v, merged
}

// Candidates lists every file Load looks for, lowest precedence first.
func Candidates() []string { return configPaths() }

// configPaths lists candidate files in precedence order (lowest first):
// system, user, project.
func configPaths() []string {
	paths := []string{"/etc/gaffer/gaffer.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".gaffer", "gaffer.toml"))
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, project)
	}
	return paths
}

// findProjectConfig searches for gaffer.toml by walking up the directory
// tree. Returns the path to the first one found, or empty string.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return initViper().Get(key)
}

// IsSet reports whether key has a value from any source, defaults included
func IsSet(key string) bool {
	return initViper().IsSet(key)
}
