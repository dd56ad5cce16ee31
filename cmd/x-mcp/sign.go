package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alucardeht/x-mcp/internal/auth"
)

func signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign METHOD URL [key=value ...]",
		Short: "Print the OAuth 1.0a Authorization header for a request",
		Long: `Print the OAuth 1.0a Authorization header for a request.

Query parameters in URL are signed along with any key=value arguments.
Requires the four OAuth 1.0a credentials.

Example:
  x-mcp sign GET 'https://api.twitter.com/2/tweets/search/recent' query=golang max_results=10`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]string, len(args)-2)
			for _, kv := range args[2:] {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("parameter %q is not key=value", kv)
				}
				params[k] = v
			}

			signer, err := auth.NewHmacSigner(cfg.Credential())
			if err != nil {
				return err
			}

			header, err := signer.Sign(args[0], args[1], params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), header)
			return nil
		},
	}
}
