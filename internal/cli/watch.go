package cli

import (
	"fmt"
	"log"
	"sort"

	"github.com/spf13/cobra"

	"github.com/transmute-lang/transmute/internal/watcher"
)

var watchExtensions = []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h", ".c"}

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-slice a translation unit whenever its sources change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		entry := args[0]

		run := func() {
			g, includes, err := loadUnit(cfg, entry)
			if err != nil {
				log.Printf("Warning: reload of %s failed: %v", entry, err)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reloaded %s: %d nodes, %d includes\n",
				entry, len(g.Nodes), len(includes))
		}

		fw, err := watcher.NewFileWatcher([]string{cfg.Include.SearchRoot}, watchExtensions)
		if err != nil {
			return err
		}
		defer fw.Stop()

		fw.Start(cmd.Context(), func(files []string) {
			sort.Strings(files)
			for _, f := range files {
				log.Printf("changed: %s", f)
			}
			run()
		})

		run()
		<-cmd.Context().Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
