package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/gaffer/display"
	"github.com/teranos/gaffer/rules"
)

// ruleInfo is the JSON form of a catalog entry.
type ruleInfo struct {
	ID       rules.ID `json:"id"`
	Title    string   `json:"title"`
	Kind     string   `json:"kind"`
	Mode     string   `json:"mode"`
	Contexts []string `json:"contexts,omitempty"`
}

// RulesCmd lists the rule catalog
var RulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the GO rules in execution order",
	Long: `List every GO rule with its kind (check or repair), its fail mode and the
run contexts it is restricted to, in the order the engine runs them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := rules.Catalog()
		if !display.ShouldOutputJSON(cmd) {
			return display.PrintRules(cmd.OutOrStdout(), catalog)
		}

		infos := make([]ruleInfo, 0, len(catalog))
		for _, r := range catalog {
			infos = append(infos, ruleInfo{
				ID:       r.ID,
				Title:    r.Title,
				Kind:     r.Kind.String(),
				Mode:     r.FailMode.String(),
				Contexts: r.Contexts,
			})
		}
		return display.OutputJSON(cmd.OutOrStdout(), infos)
	},
}
