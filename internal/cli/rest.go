package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"apikb/pkg/server"
)

var restPort int

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the read-only resource surface over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		port := cfg.Port
		if restPort != 0 {
			port = restPort
		}
		srv := server.NewServer(store, log)
		return srv.Run(fmt.Sprintf(":%d", port))
	},
}

func init() {
	restCmd.Flags().IntVar(&restPort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(restCmd)
}
