package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alucardeht/x-mcp/internal/daemon"
)

func callCmd() *cobra.Command {
	var socket string

	cmd := &cobra.Command{
		Use:   "call TOOL [JSON_ARGS]",
		Short: "Invoke one tool and print its result envelope",
		Long: `Invoke one tool and print its result envelope.

Examples:
  x-mcp call get_user '{"identifier":"jack"}'
  x-mcp call search_tweets '{"query":"golang","max_results":10}'
  x-mcp call --socket /tmp/x-mcp.sock get_tweet '{"tweet_id":"20"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			var input json.RawMessage
			if len(args) == 2 {
				input = json.RawMessage(args[1])
				if !json.Valid(input) {
					return fmt.Errorf("arguments are not valid JSON")
				}
			}

			out := cmd.OutOrStdout()

			if socket != "" {
				client, err := daemon.Dial(cmd.Context(), socket)
				if err != nil {
					return err
				}
				defer client.Close()

				result, err := client.CallTool(cmd.Context(), name, input)
				if err != nil {
					return err
				}
				for _, item := range result.Content {
					fmt.Fprintln(out, item.Text)
				}
				if result.IsError {
					return fmt.Errorf("tool %s failed", name)
				}
				return nil
			}

			handler, err := buildHandler(cfg)
			if err != nil {
				return err
			}

			env := handler.CallTool(cmd.Context(), name, input)
			text, err := env.Pretty()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, text)
			if !env.Succeeded() {
				return fmt.Errorf("tool %s failed", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&socket, "socket", "", "Send the call to a server listening on this unix socket")
	return cmd
}
