package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/transmute-lang/transmute/internal/output"
)

var (
	sliceTransform bool
	sliceOut       string
)

var sliceCmd = &cobra.Command{
	Use:   "slice [files...]",
	Short: "Parse, resolve includes, and slice one or more translation units",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if sliceOut != "" {
			cfg.Output.Path = sliceOut
		}

		bar := progressbar.Default(int64(len(args)), "slicing")
		for _, path := range args {
			g, _, err := loadUnit(cfg, path)
			if err != nil {
				return err
			}

			if sliceTransform {
				if err := transformUnit(cmd.Context(), cfg, g); err != nil {
					return err
				}
				writer, err := output.NewWriter(cfg.Output.Path)
				if err != nil {
					return err
				}
				if err := writer.WriteGraph(g); err != nil {
					writer.Close()
					return err
				}
				if err := writer.Close(); err != nil {
					return err
				}
			}
			bar.Add(1)
		}

		fmt.Fprintln(cmd.OutOrStdout())
		if sliceTransform {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.Output.Path)
		}
		return nil
	},
}

func init() {
	sliceCmd.Flags().BoolVar(&sliceTransform, "transform", false, "run the transformation oracle and write the target file")
	sliceCmd.Flags().StringVarP(&sliceOut, "out", "o", "", "target file path (overrides config)")
	rootCmd.AddCommand(sliceCmd)
}
