package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alucardeht/x-mcp/internal/daemon"
	"github.com/alucardeht/x-mcp/internal/logger"
	"github.com/alucardeht/x-mcp/internal/mcp"
)

type serveOptions struct {
	socket string
	http   string
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server.

Without flags the server speaks line-delimited JSON-RPC on stdin/stdout,
which is what MCP hosts expect when they spawn it.

Examples:
  x-mcp serve                          # stdio
  x-mcp serve --socket /tmp/x-mcp.sock # unix socket, one session per client
  x-mcp serve --http 127.0.0.1:8080    # HTTP, POST /mcp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.socket, "socket", "", "Listen on this unix socket instead of stdio")
	cmd.Flags().StringVar(&opts.http, "http", "", "Listen on this HTTP address instead of stdio")
	cmd.MarkFlagsMutuallyExclusive("socket", "http")

	return cmd
}

func runServe(parent context.Context, opts serveOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, shutdownSignals()...)
	defer stop()

	handler, err := buildHandler(cfg)
	if err != nil {
		return err
	}

	switch {
	case opts.socket != "":
		return daemon.New(opts.socket, handler).Serve(ctx)
	case opts.http != "":
		return mcp.NewHTTPServer(handler, cfg.Server.HTTPToken).ListenAndServe(ctx, opts.http)
	default:
		return serveStdio(ctx, mcp.NewServer(handler))
	}
}

// serveStdio returns on EOF, on a fatal stream error, or on a signal. A
// blocked stdin read cannot be interrupted, so a signal abandons it.
func serveStdio(ctx context.Context, server *mcp.Server) error {
	done := make(chan error, 1)
	go func() {
		done <- server.ProcessStream(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("stdio session: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down", "reason", context.Cause(ctx))
		return nil
	}
}
