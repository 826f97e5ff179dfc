package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-fiscal-server/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-fiscal-server/internal/platform/observability"
	manifestactivities "github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/activities/manifests"
	manifestworkflows "github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/workflows/manifests"
)

func main() {
	ctx := context.Background()
	const serviceName = "fiscal-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	infra, cleanup := api.ConnectInfrastructure(ctx, logger)
	defer cleanup()
	if infra.DB == nil {
		logger.Warn("worker runs against in-memory manifests; runs started by the API will not find their manifest")
	}
	activities := manifestactivities.NewActivities(api.BuildManifestService(cfg, infra, instruments))

	// The worker always needs Temporal, regardless of TEMPORAL_DISABLED.
	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, manifestworkflows.ManifestProcessingTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(manifestworkflows.ManifestProcessingWorkflow, workflow.RegisterOptions{Name: manifestworkflows.ManifestProcessingWorkflowName})
	w.RegisterActivityWithOptions(activities.ProcessManifest, activity.RegisterOptions{Name: manifestactivities.ProcessManifestActivityName})

	logger.Info("worker listening", slog.String("taskQueue", manifestworkflows.ManifestProcessingTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
