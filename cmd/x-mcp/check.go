package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alucardeht/x-mcp/internal/xapi"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, color.CyanString("x-mcp configuration"))

			mode, modeErr := cfg.ResolveAuthMode()
			if modeErr != nil {
				fmt.Fprintf(out, "  Auth:     %s %v\n", color.RedString("✗"), modeErr)
			} else {
				fmt.Fprintf(out, "  Auth:     %s %s\n", color.GreenString("✓"), mode)
			}

			fmt.Fprintf(out, "  API:      %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout)
			fmt.Fprintf(out, "  Logging:  %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)

			registry, regErr := buildRegistry(cfg, xapi.NewClient(nil))
			if regErr != nil {
				fmt.Fprintf(out, "  Tools:    %s %v\n", color.RedString("✗"), regErr)
			} else {
				fmt.Fprintf(out, "  Tools:    %s\n", strings.Join(registry.Names(), ", "))
			}

			if cfg.Tools.UserCache.Size > 0 {
				fmt.Fprintf(out, "  Cache:    %d users for %s\n", cfg.Tools.UserCache.Size, cfg.Tools.UserCache.TTL)
			} else {
				fmt.Fprintf(out, "  Cache:    %s\n", color.YellowString("disabled"))
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if regErr != nil {
				return regErr
			}
			fmt.Fprintln(out, color.GreenString("ok"))
			return nil
		},
	}
}
