// cmd/analytics/main.go
package main

import (
	"context"
	"flag"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/app"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/scm-dashboard/backend-go/pkg/logger"
)

// Runs the analytics passes once against the configured database, for cron use.
func main() {
	dbURL := flag.String("db-url", "", "Database connection string")
	processType := flag.String("type", "all", "Pass to run (detect, procure, optimize, or all)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall timeout")
	flag.Parse()

	if *dbURL == "" {
		logger.Log.Fatal().Msg("Database URL is required (use -db-url flag)")
	}

	cfg := config.Load()
	cfg.Database.URL = *dbURL

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	passes := map[string]func(context.Context) error{
		"detect": func(ctx context.Context) error {
			res, err := a.Services.Anomaly.Detect(ctx)
			if err == nil {
				logger.Log.Info().Int("anomalies", res.Count).Msg(res.Message)
			}
			return err
		},
		"procure": func(ctx context.Context) error {
			res, err := a.Services.Procurement.Generate(ctx)
			if err == nil {
				logger.Log.Info().Int("suggestions", res.Count).Msg(res.Message)
			}
			return err
		},
		"optimize": func(ctx context.Context) error {
			rows, err := a.Services.Inventory.Optimize(ctx)
			if err == nil {
				logger.Log.Info().Int("products", len(rows)).Msg("inventory optimized")
			}
			return err
		},
	}

	var order []string
	switch *processType {
	case "all", "":
		order = []string{"detect", "procure", "optimize"}
	case "detect", "procure", "optimize":
		order = []string{*processType}
	default:
		logger.Log.Fatal().Str("type", *processType).Msg("Unknown process type")
	}

	failed := false
	for _, name := range order {
		start := time.Now()
		if err := passes[name](ctx); err != nil {
			logger.Log.Error().Err(err).Str("pass", name).Msg("analytics pass failed")
			failed = true
			continue
		}
		logger.Log.Info().Str("pass", name).Dur("took", time.Since(start)).Msg("analytics pass completed")
	}
	if failed {
		logger.Log.Fatal().Msg("one or more analytics passes failed")
	}
}
