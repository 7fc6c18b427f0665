package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teranos/gaffer/config"
	"github.com/teranos/gaffer/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gaffer configuration",
	Long: `Display and check gaffer configuration.

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/gaffer/gaffer.toml)
3. User config (~/.gaffer/gaffer.toml)
4. Project config (./gaffer.toml, searched up the directory tree)
5. Environment variables (GAFFER_* prefix)
6. Command line flags

--config replaces 2-5 with a single file.

Examples:
  gaffer config show                  # Show current configuration
  gaffer config show --format json    # Show configuration in JSON format
  gaffer config get report.group      # Get specific config value
  gaffer config validate              # Validate current configuration`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the merged gaffer configuration from all sources",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g. database.path, report.group)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runConfigValidate,
}

var configFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "Show which configuration files are loaded",
	RunE:  runConfigFiles,
}

func init() {
	configShowCmd.Flags().String("format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configFilesCmd)
}

// settings returns the Viper instance behind the active configuration.
func settings(cmd *cobra.Command) (*viper.Viper, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.ViperFromFile(path)
	}
	return config.GetViper(), nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	v, err := settings(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	data, err := config.Marshal(v.AllSettings(), format)
	if err != nil {
		return err
	}
	if format != "json" {
		fmt.Fprintln(cmd.OutOrStdout(), "# gaffer configuration")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	v, err := settings(cmd)
	if err != nil {
		return err
	}
	if !v.IsSet(key) {
		return errors.Wrapf(errors.ErrNotFound, "configuration key %q", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if _, err := cfg.LoadResources(nil); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if _, err := cfg.RulesConfig(nil); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintln("Configuration is valid"))
	return nil
}

func runConfigFiles(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		fmt.Fprintf(out, "Using --config %s only\n", path)
		return nil
	}

	loaded := make(map[string]bool)
	for _, f := range config.Files() {
		loaded[f] = true
	}
	fmt.Fprintln(out, "Configuration files (later overrides earlier):")
	for _, path := range config.Candidates() {
		status := "missing"
		if loaded[path] {
			status = "loaded"
		}
		fmt.Fprintf(out, "  [%s] %s\n", status, path)
	}
	fmt.Fprintf(out, "Environment: %s_* variables\n", config.EnvPrefix)
	return nil
}
