package main

import (
	"fmt"
	"net/http"

	"github.com/alucardeht/x-mcp/internal/config"
	"github.com/alucardeht/x-mcp/internal/logger"
	"github.com/alucardeht/x-mcp/internal/mcp"
	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/tools/twitter"
	"github.com/alucardeht/x-mcp/internal/xapi"
)

// buildHandler wires config into the dispatcher: authenticator, upstream
// client, resolver cache and the tool routing table.
func buildHandler(cfg *config.Config) (*mcp.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	authn, err := cfg.Authenticator()
	if err != nil {
		return nil, err
	}

	transport := xapi.NewTransport(cfg.API.BaseURL, authn, &http.Client{}, cfg.API.Timeout)
	api := xapi.NewClient(transport)

	registry, err := buildRegistry(cfg, api)
	if err != nil {
		return nil, err
	}

	logger.Info("x-mcp ready",
		"auth_mode", authn.Mode(),
		"tools", registry.Names(),
		"base_url", cfg.API.BaseURL)

	return mcp.NewHandler(registry, mcp.DefaultServerInfo()), nil
}

func buildRegistry(cfg *config.Config, api xapi.API) (*tools.Registry, error) {
	resolver := twitter.NewUserResolver(api, cfg.Tools.UserCache.Size, cfg.Tools.UserCache.TTL)
	all := twitter.GetTools(api, twitter.Options{
		MaxTweetLength: cfg.Tools.MaxTweetLength,
		Resolver:       resolver,
	})

	registry := tools.NewRegistry()
	skipped, err := registry.RegisterMatching(cfg.Tools.Enabled, all...)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		logger.Info("tools disabled by allowlist", "skipped", skipped)
	}
	if len(registry.Names()) == 0 {
		return nil, fmt.Errorf("no tools enabled by %v", cfg.Tools.Enabled)
	}
	return registry, nil
}
