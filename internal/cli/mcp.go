package cli

import (
	"github.com/spf13/cobra"

	"github.com/transmute-lang/transmute/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [file]",
	Short: "Serve symbol resolution over MCP on stdio",
	Long: `Loads the given translation unit, resolves its includes, and then
answers transmute_resolve and transmute_deps tool calls over stdio
until the client disconnects or the process is signalled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		g, includes, err := loadUnit(cfg, args[0])
		if err != nil {
			return err
		}

		srv, err := mcp.NewServer(&mcp.Engine{Graph: g, Includes: includes})
		if err != nil {
			return err
		}
		return srv.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
