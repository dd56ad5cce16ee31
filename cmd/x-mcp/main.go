// Command x-mcp exposes the X API to MCP hosts over stdio, a unix socket
// or HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alucardeht/x-mcp/internal/config"
	"github.com/alucardeht/x-mcp/internal/logger"
)

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "x-mcp",
		Short: "MCP server for the X (Twitter) API",
		Long: `x-mcp serves X API tools to MCP hosts.

Usage modes:
  x-mcp                  Serve line-delimited JSON-RPC on stdin/stdout
  x-mcp serve --socket   Serve on a unix socket
  x-mcp serve --http     Serve over HTTP

Credentials come from X_CONSUMER_KEY, X_CONSUMER_SECRET, X_ACCESS_TOKEN and
X_ACCESS_TOKEN_SECRET, or X_BEARER_TOKEN, read from the environment or a
.env file in the working directory.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), serveOptions{})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(),
		toolsCmd(),
		callCmd(),
		signCmd(),
		checkCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger.Init(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	logger.Debug("configuration loaded", "auth", cfg.Auth, "base_url", cfg.API.BaseURL)
	return nil
}
