package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alucardeht/x-mcp/pkg/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (MCP %s)\n", version.ServerName, version.Version, version.ProtocolVersion)
		},
	}
}
