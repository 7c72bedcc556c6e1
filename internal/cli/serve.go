package cli

import (
	"github.com/spf13/cobra"

	"apikb/pkg/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the knowledge base over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		return mcp.Run(cmd.Context(), store, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
