package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	fiscalserver "github.com/Apurer/go-gin-fiscal-server/go"

	manifestsworkflows "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/workflows"
	manifestsports "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
	errorskafka "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/messaging/kafka"
	platformobservability "github.com/Apurer/go-gin-fiscal-server/internal/platform/observability"
)

// Run boots the fiscal HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "fiscal-api"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	infra, cleanup := ConnectInfrastructure(ctx, logger)
	defer cleanup()

	manifestService := BuildManifestService(cfg, infra, instruments)
	var manifestWorkflows manifestsports.WorkflowOrchestrator = manifestsworkflows.NewInlineManifestWorkflows(manifestService)
	if temporalClient, err := ConnectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, processing manifests inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		manifestWorkflows = manifestsworkflows.NewTemporalManifestWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	tracker := BuildTracker(cfg, infra, instruments)
	if len(cfg.KafkaBrokers) > 0 {
		consumer := errorskafka.NewConsumer(
			errorskafka.NewReader(errorskafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic, GroupID: cfg.KafkaGroupID}),
			tracker,
			logger,
		)
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("pipeline failure consumer stopped", slog.String("error", err.Error()))
			}
		}()
		logger.Info("consuming pipeline failure events", slog.Any("brokers", cfg.KafkaBrokers))
	}

	handlers := fiscalserver.ApiHandleFunctions{
		ManifestsAPI:        fiscalserver.NewManifestsAPI(manifestService, manifestWorkflows),
		ProcessingErrorsAPI: fiscalserver.NewProcessingErrorsAPI(tracker),
		ReturnsAPI:          fiscalserver.NewReturnsAPI(BuildLinker(infra, instruments)),
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware(cfg.CORSAllowedOrigins), otelgin.Middleware(serviceName))
	router = fiscalserver.NewRouterWithGinEngine(router, handlers)
	addr := cfg.Addr()
	logger.Info("fiscal API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("fiscal API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ConnectTemporalClient dials Temporal with tracing and structured logging unless disabled.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AddAllowHeaders("Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Location")
	return cors.New(corsConfig)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
