package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-faceoff/infrastructure/storage"
	"github.com/ahrav/go-faceoff/internal/config"
	"github.com/ahrav/go-faceoff/internal/ports"
)

// historyLimit is the --limit flag for history.
var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored comparison runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openRunStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no stored runs")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN ID\tMODE\tPROVIDER\tWINNER\tSTARTED\tINTERACTIONS")
		for _, run := range runs {
			winner := run.Winner
			if winner == "" {
				winner = "tie"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
				run.ID, run.Mode, run.Provider, winner,
				run.StartedAt.Format(time.RFC3339), run.TotalInteractions)
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored run's report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openRunStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run %s (%s, %s/%s)\n", run.ID, run.Mode, run.Provider, run.Model)
		fmt.Fprintf(out, "Started %s, took %s\n\n",
			run.StartedAt.Format(time.RFC3339), run.Duration().Round(time.Millisecond))
		fmt.Fprintln(out, run.Report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd, showCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum runs to list (0 lists all)")
}

// openRunStore opens the configured SQLite store. History and show need a
// database, so a missing path is an error rather than a silent no-op.
func openRunStore(cfg config.Config) (ports.RunStore, error) {
	if cfg.Storage.DBPath == "" {
		return nil, fmt.Errorf("no run database configured, set FACEOFF_DB_PATH or storage.db_path")
	}
	return storage.NewSQLiteRunStore(cfg.Storage.DBPath)
}
