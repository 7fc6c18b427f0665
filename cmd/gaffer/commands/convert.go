package commands

import (
	"github.com/spf13/cobra"
)

// ConvertCmd rewrites an annotation file in another format
var ConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert between GAF and GPAD",
	Long: `Convert a GAF file to GPAD or back. Records go through the same parser
and rules as validate; only accepted records are written.

Examples:
  gaffer convert mgi.gaf --to gpad --to-version 2.0 -o mgi.gpad
  gaffer convert pombase.gpad --to gaf > pombase.gaf`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	addRunFlags(ConvertCmd, stdio)
	_ = ConvertCmd.MarkFlagRequired("to")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	j, err := newJob(cmd, cfg)
	if err != nil {
		return err
	}
	_, err = j.runAndPrint(cmd, args[0])
	return err
}
