package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transmute-lang/transmute/internal/search"
)

var queryLimit int

var queryCmd = &cobra.Command{
	Use:   "query [file] [term]",
	Short: "Full-text search over the symbols of a translation unit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		g, _, err := loadUnit(cfg, args[0])
		if err != nil {
			return err
		}

		idx, err := search.NewIndex(g)
		if err != nil {
			return err
		}
		defer idx.Close()

		hits, err := idx.Search(args[1], queryLimit)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no symbols matched")
			return nil
		}
		for _, hit := range hits {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s\n", hit.Score, hit.Name)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryLimit, "limit", 10, "maximum number of results")
	rootCmd.AddCommand(queryCmd)
}
