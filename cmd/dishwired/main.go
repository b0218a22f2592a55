// Command dishwired serves the restaurant aggregation pipeline over
// HTTP, and optionally as MCP tools on stdio for an LLM collaborator.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dishwire/dishwire/aggregate"
)

func main() {
	configPath := env("CONFIG", "")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Config: YAML file when given, env fallbacks otherwise.
	var cfg aggregate.Config
	if configPath != "" {
		loaded, err := aggregate.LoadConfig(configPath)
		if err != nil {
			slog.Error("load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = *loaded
	}
	if cfg.Providers.GoogleAPIKey == "" {
		cfg.Providers.GoogleAPIKey = os.Getenv("GOOGLE_PLACES_API_KEY")
	}
	if cfg.Providers.YelpAPIKey == "" {
		cfg.Providers.YelpAPIKey = os.Getenv("YELP_API_KEY")
	}
	if !cfg.Images.LiveSearch {
		cfg.Images.LiveSearch = os.Getenv("LIVE_IMAGE_SEARCH") == "1"
	}
	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = ":" + env("PORT", "8080")
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc := aggregate.New(cfg, aggregate.WithLogger(logger))

	// Optional MCP stdio transport: the summarizer drives the
	// pipeline directly instead of going through HTTP.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "dishwire",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		go func() {
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				slog.Error("MCP stdio", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.HTTP.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
