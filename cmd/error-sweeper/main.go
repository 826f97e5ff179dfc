package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/app/api"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	platformobservability "github.com/Apurer/go-gin-fiscal-server/internal/platform/observability"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "fiscal-error-sweeper")
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()
	logger := instruments.Logger

	infra, cleanup := api.ConnectInfrastructure(ctx, logger)
	defer cleanup()
	if infra.DB == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; nothing to sweep")
	}

	tracker := api.BuildTracker(cfg, infra, instruments)
	result, err := tracker.Sweep(ctx, types.SweepInput{Limit: cfg.ErrorSweepLimit})
	if err != nil {
		log.Fatalf("processing error sweep failed: %v", err)
	}
	logger.Info("processing error sweep completed",
		slog.Int("attempted", result.Attempted),
		slog.Int("resolved", result.Resolved),
		slog.Int("pending", result.Pending),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped))
}
