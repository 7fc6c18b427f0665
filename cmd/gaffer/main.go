package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/gaffer/cmd/gaffer/commands"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gaffer",
	Short: "gaffer - GO annotation file parser and validator",
	Long: `gaffer - Parse, validate and convert Gene Ontology annotation files.

gaffer reads GAF (1.0-2.2) and GPAD (1.1-2.0) files, runs the GO rules over
every record and reports what was repaired, dropped or skipped.

Available commands:
  validate - Validate a file against the GO rules
  convert  - Convert between GAF and GPAD
  filter   - Keep records by taxon, ID space or evidence
  map2slim - Map terms to a GO slim
  rules    - List the GO rules
  runs     - Inspect stored validation runs
  config   - Manage gaffer configuration

Examples:
  gaffer validate mgi.gaf --ontology go.json
  gaffer convert mgi.gaf --to gpad -o mgi.gpad
  gaffer rules --json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logJSON, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(logJSON, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "Use only this configuration file")

	// Add commands
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.ConvertCmd)
	rootCmd.AddCommand(commands.FilterCmd)
	rootCmd.AddCommand(commands.Map2SlimCmd)
	rootCmd.AddCommand(commands.RulesCmd)
	rootCmd.AddCommand(commands.RunsCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
