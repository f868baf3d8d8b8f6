// Command gamestore serves the catalog and order API.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gamestore",
		Short:         "Game catalog and order service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("env-file", ".env", "Optional .env file with GAMESTORE_* settings")
	root.PersistentFlags().String("db", "", "Path to the sqlite database (env: GAMESTORE_DB_PATH)")
	root.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn or error (env: GAMESTORE_LOG_LEVEL)")

	root.AddCommand(serveCmd(), migrateCmd())
	return root
}
