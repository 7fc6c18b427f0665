package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/gaffer/db"
	"github.com/teranos/gaffer/display"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/report"
	"github.com/teranos/gaffer/store"
)

// RunsCmd inspects stored validation runs
var RunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List validation runs stored with --db",
	Long: `List the runs recorded in the run database, newest first.

Examples:
  gaffer runs --db gaffer.db
  gaffer runs show 0f8fad5b-d9cb-469f-a165-70867728950e --db gaffer.db`,
	Args: cobra.NoArgs,
	RunE: runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored run and its message counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	RunsCmd.PersistentFlags().String("db", "", "Run database (default database.path)")
	RunsCmd.Flags().Int("limit", 20, "Number of runs to list (0 for all)")
	RunsCmd.AddCommand(runsShowCmd)
}

// openStore opens the run database named by --db or database.path.
func openStore(cmd *cobra.Command) (*store.SQLStore, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Path == "" {
		return nil, nil, errors.WithHint(
			errors.Wrap(errors.ErrInvalidConfig, "no run database configured"),
			"pass --db or set database.path",
		)
	}
	log := logger.Logger.Named("runs")
	conn, err := db.OpenWithMigrations(cfg.Database.Path, log)
	if err != nil {
		return nil, nil, err
	}
	return store.NewSQLStore(conn, log), conn.Close, nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	s, closeDB, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := s.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		if runs == nil {
			runs = []*store.Run{}
		}
		return display.OutputJSON(cmd.OutOrStdout(), runs)
	}
	return display.PrintRuns(cmd.OutOrStdout(), runs)
}

// runDetail is a stored run with its message counts.
type runDetail struct {
	*store.Run
	Messages map[report.Level]int `json:"messages"`
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	s, closeDB, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	run, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	counts, err := s.MessageCounts(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(out, runDetail{Run: run, Messages: counts})
	}

	if err := display.PrintRuns(out, []*store.Run{run}); err != nil {
		return err
	}
	if run.FinishedAt == nil {
		fmt.Fprint(out, pterm.Warning.Sprintln("Run did not finish"))
	}
	for _, level := range report.Levels() {
		if n := counts[level]; n > 0 {
			fmt.Fprintf(out, "%s messages: %d\n", level, n)
		}
	}
	return nil
}
