// Package cmd contains the command line entry points of the server
package cmd

import (
	"fmt"
	"os"

	"spacetwo/asset-api/config"
	"spacetwo/asset-api/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "asset-api",
	Short:         "Project, collection and file API for creative assets",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Setup(cmd.Flags()); err != nil {
			return fmt.Errorf("failed to load config, %w", err)
		}

		_, err := logger.Setup(viper.GetString("app.log_level"), viper.GetString("app.env"))
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("app.log_level", "info", "log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("db.dsn", "database.db", "record store DSN")

	rootCmd.AddCommand(serveCmd, sweepCmd)
}

// Execute runs the command given on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
