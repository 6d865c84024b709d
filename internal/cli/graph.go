package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/transmute-lang/transmute/internal/depgraph"
	"github.com/transmute-lang/transmute/internal/output"
)

var (
	graphDOT      bool
	graphPageRank bool
	graphTopK     int
)

const (
	pageRankDamping    = 0.85
	pageRankIterations = 20
)

var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Print the program graph, or export the design graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		g, _, err := loadUnit(cfg, args[0])
		if err != nil {
			return err
		}

		if !graphDOT && !graphPageRank {
			output.Print(cmd.OutOrStdout(), g)
			return nil
		}

		dg, err := depgraph.Build(g, true)
		if err != nil {
			return err
		}

		if graphDOT {
			if err := dg.DOT(os.Stdout); err != nil {
				return err
			}
		}
		if graphPageRank {
			for _, r := range dg.TopK(pageRankDamping, pageRankIterations, graphTopK) {
				fmt.Fprintf(cmd.OutOrStdout(), "%.6f  %s\n", r.Score, r.Name)
			}
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphDOT, "dot", false, "export the design graph in DOT format")
	graphCmd.Flags().BoolVar(&graphPageRank, "pagerank", false, "rank symbols by PageRank")
	graphCmd.Flags().IntVar(&graphTopK, "top-k", 0, "limit ranking output to the top K symbols")
	rootCmd.AddCommand(graphCmd)
}
