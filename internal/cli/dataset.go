package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-faceoff/internal/dataset"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect and export the statement dataset",
}

// datasetOut is the --out flag for dataset init.
var datasetOut string

var datasetInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in dataset to a YAML file",
	Long: `Writes the built-in statements to a YAML file that can be edited and fed
back through the run.dataset_path config key. The file carries every
statement, facts and ambiguous alike.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		statements := dataset.Default()
		if err := dataset.Write(datasetOut, statements); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d statements to %s\n", len(statements), datasetOut)
		return nil
	},
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the built-in statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tDIFFICULTY\tEXPECTED\tSTATEMENT")
		for _, s := range dataset.Default() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Category, s.Difficulty, s.Expected, s.Text)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetInitCmd, datasetListCmd)
	datasetInitCmd.Flags().StringVarP(&datasetOut, "out", "o", "statements.yaml", "output file path")
}
