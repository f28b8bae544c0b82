// Package commands implements the FlowMind CLI using cobra.
package commands

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flowmindhq/flowmind/internal/config"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flowmind",
		Short: "FlowMind - customer support automation backend",
		Long: `FlowMind bridges WhatsApp customers to an AI support agent.

Examples:
  flowmind serve
  flowmind learn`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newLearnCmd(),
	)

	return rootCmd
}

// setup installs the default logger, loads .env, and reads configuration.
// Shared by every subcommand.
func setup() (*config.Config, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	return config.Load()
}
