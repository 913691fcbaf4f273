// Command morpheus runs the Morpheus Mall admin backend and its maintenance
// tasks.
//
// @title Morpheus Mall Admin API
// @version 1.0
// @description Event registrations, boutique listings and product approvals for the Morpheus Mall admin console.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/morpheus-mall/mall-backend/config"
	"github.com/morpheus-mall/mall-backend/internal/logging"
)

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "morpheus",
	Short: "Morpheus Mall admin backend",
	Long: `Morpheus Mall admin backend.

Serves the admin API for event registrations, boutique listings and product
approvals, and provides the matching maintenance commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Setup(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, validateCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
