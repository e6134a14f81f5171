package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hbastos/intervals-icu-mcp/internal/config"
	"github.com/hbastos/intervals-icu-mcp/internal/intervals"
	"github.com/hbastos/intervals-icu-mcp/internal/logger"
	"github.com/hbastos/intervals-icu-mcp/internal/mcp"
	"github.com/hbastos/intervals-icu-mcp/internal/tools"
	"github.com/hbastos/intervals-icu-mcp/internal/tools/activities"
	"github.com/hbastos/intervals-icu-mcp/internal/tools/wellness"
	"github.com/hbastos/intervals-icu-mcp/pkg/version"
)

func main() {
	// A .env file is optional; deployments normally configure through the
	// host's launch configuration.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.Format = cfg.Log.Format
	logger.Init(logCfg)

	logger.Info("starting intervals.icu MCP server",
		"version", version.Version,
		"environment", cfg.Environment,
		"athlete_id", cfg.Intervals.AthleteID,
		"base_url", cfg.Intervals.BaseURL)

	client := intervals.NewClient(cfg.Intervals)

	registry := tools.NewRegistry()
	if err := registerAll(registry, client, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register tools: %v\n", err)
		os.Exit(1)
	}
	logger.Info("registered tools", "count", len(registry.Names()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(registry)
	if err := srv.ServeStdio(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func registerAll(registry *tools.Registry, client *intervals.Client, cfg *config.Config) error {
	all := []tools.Tool{tools.NewHealthTool(cfg.Intervals.AthleteID)}
	all = append(all, activities.GetTools(client)...)
	all = append(all, wellness.GetTools(client)...)

	for _, t := range all {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}
