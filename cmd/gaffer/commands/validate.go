package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/gaffer/config"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/report"
	"github.com/teranos/gaffer/watch"
)

// ValidateCmd validates an annotation file against the GO rules
var ValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a GAF or GPAD file against the GO rules",
	Long: `Parse a GAF or GPAD file, run every enabled GO rule over each record and
report what was repaired, dropped or skipped.

The format is detected from the version header unless --format is given.
Files ending in .gz are decompressed; "-" reads standard input.

Examples:
  gaffer validate mgi.gaf --ontology go.json --group mgi
  gaffer validate mgi.gaf -o mgi.clean.gaf --report mgi.report.md
  gaffer validate mgi.gaf --rule 11 --rule 61 -vv
  gaffer validate mgi.gaf --db gaffer.db --metrics /var/lib/node_exporter/gaffer.prom
  gaffer validate mgi.gaf --metadata go-site/metadata.yaml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	addRunFlags(ValidateCmd, "")
	ValidateCmd.Flags().String("report", "", "Write the report to this file")
	ValidateCmd.Flags().String("report-format", "", "Report format: markdown or json")
	ValidateCmd.Flags().Int("max-messages", 0, "Maximum report messages kept (0 keeps none)")
	ValidateCmd.Flags().Bool("strict", false, "Fail when any record is dropped or any ERROR is reported")
	ValidateCmd.Flags().Bool("watch", false, "Re-validate whenever the file, its config or its metadata change")
}

func runValidate(cmd *cobra.Command, args []string) error {
	watching, _ := cmd.Flags().GetBool("watch")
	if watching && args[0] == stdio {
		return errors.Wrap(errors.ErrInvalidConfig, "--watch needs a file, not standard input")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	j, err := newJob(cmd, cfg)
	if err != nil {
		return err
	}

	result, err := j.runAndPrint(cmd, args[0])
	if watching {
		if result == nil {
			return err
		}
		return watchValidate(cmd, args[0], cfg)
	}
	if err != nil {
		return err
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		if n := result.Report.Count(report.Error); n > 0 || result.Stats.Dropped > 0 {
			return errors.Newf("%s: %d records dropped, %d ERROR messages", result.Source, result.Stats.Dropped, n)
		}
	}
	return nil
}

// watchValidate re-validates path whenever it, its configuration or its
// reference files change. Configuration is reloaded on every run.
func watchValidate(cmd *cobra.Command, path string, cfg *config.Config) error {
	paths := []string{path, cfg.Metadata.Path, cfg.Metadata.Ontology, cfg.Metadata.ECO, cfg.Rules.Profile}
	if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
		paths = append(paths, cfgPath)
	} else {
		paths = append(paths, config.Files()...)
	}

	w, err := watch.New(paths, watch.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.ErrOrStderr(), pterm.Info.Sprintf("Watching %d files, Ctrl-C to stop\n", w.Files()))

	return w.Run(cmd.Context(), func(ctx context.Context, changed string) error {
		logger.Infow("Re-validating", logger.FieldFile, changed)
		config.Reset()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		j, err := newJob(cmd, cfg)
		if err != nil {
			return err
		}
		_, err = j.runAndPrint(cmd, path)
		return err
	})
}
