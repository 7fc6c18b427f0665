package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/pipeline"
)

// FilterCmd keeps the accepted records that pass allow-lists
var FilterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Write the accepted records that match taxon, ID space or evidence filters",
	Long: `Validate a file and write only the accepted records that pass every filter.

Examples:
  gaffer filter goa_uniprot_all.gaf.gz --taxon 9606 -o human.gaf
  gaffer filter mgi.gaf --idspace MGI --exclude-evidence IEA --no-negated`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	addRunFlags(FilterCmd, stdio)
	FilterCmd.Flags().StringSlice("taxon", nil, "Keep these subject taxa (9606, taxon:9606 or NCBITaxon:9606)")
	FilterCmd.Flags().Bool("include-interacting", false, "Also keep records whose interacting taxon matches --taxon")
	FilterCmd.Flags().StringSlice("idspace", nil, "Keep subjects in these ID spaces, e.g. MGI or UniProtKB")
	FilterCmd.Flags().StringSlice("exclude-evidence", nil, "Drop these evidence codes or ECO classes")
	FilterCmd.Flags().Bool("no-negated", false, "Drop NOT annotations")
}

// buildFilters turns the filter flags into pipeline filters.
func buildFilters(cmd *cobra.Command, j *job) []pipeline.Filter {
	f := cmd.Flags()
	var filters []pipeline.Filter
	if taxa, _ := f.GetStringSlice("taxon"); len(taxa) > 0 {
		interacting, _ := f.GetBool("include-interacting")
		filters = append(filters, pipeline.TaxonFilter(taxa, interacting))
	}
	if spaces, _ := f.GetStringSlice("idspace"); len(spaces) > 0 {
		filters = append(filters, pipeline.IDSpaceFilter(spaces))
	}
	if codes, _ := f.GetStringSlice("exclude-evidence"); len(codes) > 0 {
		filters = append(filters, pipeline.EvidenceFilter(codes, j.res.ECO.Code))
	}
	if negated, _ := f.GetBool("no-negated"); negated {
		filters = append(filters, pipeline.NegationFilter())
	}
	return filters
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	j, err := newJob(cmd, cfg)
	if err != nil {
		return err
	}

	filters := buildFilters(cmd, j)
	if len(filters) == 0 {
		return errors.WithHint(
			errors.Wrap(errors.ErrInvalidConfig, "no filter given"),
			"use --taxon, --idspace, --exclude-evidence or --no-negated",
		)
	}
	j.options = append(j.options, pipeline.WithFilters(filters...))

	_, err = j.runAndPrint(cmd, args[0])
	return err
}
