// Package cli defines the apikb command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"apikb/internal/config"
	"apikb/internal/logging"
	"apikb/internal/storage"
)

var (
	cfgFile string
	dbPath  string

	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "apikb",
	Short: "API knowledge base server",
	Long: `apikb tracks projects, API endpoints and functions in a SQLite
knowledge base and serves them to MCP clients over stdio or over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		log = logging.New(cfg.LogLevel)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .apikb/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the knowledge base database")
}

// openStore opens the configured database. The caller owns the handle and
// must close it on shutdown; a failed open aborts startup.
func openStore() (*storage.Store, error) {
	store, err := storage.Open(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	return store, nil
}
