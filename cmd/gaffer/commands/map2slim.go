package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/pipeline"
)

// Map2SlimCmd maps annotated terms up to a GO slim
var Map2SlimCmd = &cobra.Command{
	Use:   "map2slim <file>",
	Short: "Map annotated terms to the slim terms that subsume them",
	Long: `Validate a file and rewrite every accepted record against a GO slim: each
term is replaced by the most specific slim terms above it over is_a and
part_of. Records whose term maps to no slim term are not written.

The slim is either a subset of the ontology or an explicit term list.

Examples:
  gaffer map2slim pombase.gaf --ontology go.json --subset goslim_pombe -o slim.gaf
  gaffer map2slim mgi.gaf --ontology go.json --slim GO:0003674,GO:0008150,GO:0005575`,
	Args: cobra.ExactArgs(1),
	RunE: runMap2Slim,
}

func init() {
	addRunFlags(Map2SlimCmd, stdio)
	Map2SlimCmd.Flags().String("subset", "", "Ontology subset to map to, e.g. goslim_generic")
	Map2SlimCmd.Flags().StringSlice("slim", nil, "Slim terms to map to")
	Map2SlimCmd.MarkFlagsMutuallyExclusive("subset", "slim")
	Map2SlimCmd.MarkFlagsOneRequired("subset", "slim")
}

func newSlimmer(cmd *cobra.Command, j *job) (*pipeline.Slimmer, error) {
	onto := j.res.Ontology()
	if onto == nil {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrInvalidConfig, "map2slim needs an ontology"),
			"pass --ontology or set metadata.ontology",
		)
	}

	if subset, _ := cmd.Flags().GetString("subset"); subset != "" {
		return pipeline.NewSubsetSlimmer(onto, subset)
	}

	raw, _ := cmd.Flags().GetStringSlice("slim")
	terms := make([]annotation.Curie, 0, len(raw))
	for _, s := range raw {
		c, err := annotation.ParseCurie(s)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "--slim %q: %v", s, err)
		}
		terms = append(terms, c)
	}
	return pipeline.NewSlimmer(onto, terms)
}

func runMap2Slim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	j, err := newJob(cmd, cfg)
	if err != nil {
		return err
	}

	slimmer, err := newSlimmer(cmd, j)
	if err != nil {
		return err
	}
	j.options = append(j.options, pipeline.WithSlim(slimmer))

	_, err = j.runAndPrint(cmd, args[0])
	return err
}
