package api

import (
	"context"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	invoicingclient "github.com/Apurer/go-gin-fiscal-server/internal/clients/http/invoicing"
	pipelineclient "github.com/Apurer/go-gin-fiscal-server/internal/clients/http/pipeline"
	manifestinvoicing "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/external/invoicing"
	manifestlock "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/lock/redis"
	manifestsmemory "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/memory"
	manifestsobs "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/observability"
	manifestspostgres "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/persistence/postgres"
	manifestsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application"
	manifestsports "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
	errorspipeline "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/external/pipeline"
	errorsmemory "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/memory"
	errorsobs "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/observability"
	errorspostgres "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/persistence/postgres"
	errorsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application"
	errorsports "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
	returnsmemory "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/adapters/memory"
	returnsobs "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/adapters/observability"
	returnspostgres "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/adapters/persistence/postgres"
	returnsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/application"
	returnsports "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
	"github.com/Apurer/go-gin-fiscal-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-fiscal-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-fiscal-server/internal/platform/postgres"
	platformredis "github.com/Apurer/go-gin-fiscal-server/internal/platform/redis"
)

// Infrastructure holds the shared connections; nil fields select the in-memory or lock-free fallbacks.
type Infrastructure struct {
	DB    *gorm.DB
	Redis *goredis.Client
}

// ConnectInfrastructure dials postgres and redis from the environment and migrates the schema.
// A failed migration drops back to in-memory repositories.
func ConnectInfrastructure(ctx context.Context, logger *slog.Logger) (Infrastructure, func()) {
	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			logger.Warn("failed to migrate postgres schema, falling back to in-memory repositories", slog.String("error", err.Error()))
			cleanupDB()
			db, cleanupDB = nil, func() {}
		}
	}
	redisClient, cleanupRedis := platformredis.ConnectFromEnv(ctx, logger)
	return Infrastructure{DB: db, Redis: redisClient}, func() {
		cleanupRedis()
		cleanupDB()
	}
}

// BuildManifestService wires the manifests service with persistence, the invoicing provider and the run lock.
func BuildManifestService(cfg Config, infra Infrastructure, instruments *platformobservability.Instruments) manifestsports.Service {
	logger := instruments.Logger
	var repo manifestsports.Repository = manifestsmemory.NewRepository()
	if infra.DB != nil {
		repo = manifestspostgres.NewRepository(infra.DB)
		logger.Info("manifest repository configured with postgres")
	}

	var client *invoicingclient.Client
	if cfg.InvoicingBaseURL == "" {
		logger.Warn("INVOICING_BASE_URL not set, every provider call will fail")
	} else {
		c, err := invoicingclient.NewInvoicingClient(cfg.InvoicingBaseURL, cfg.InvoicingAPIKey, &http.Client{Timeout: cfg.InvoicingTimeout})
		if err != nil {
			logger.Warn("failed to build invoicing client", slog.String("error", err.Error()))
		} else {
			client = c
		}
	}

	opts := []manifestsapp.Option{
		manifestsapp.WithCallTimeout(cfg.InvoicingTimeout),
		manifestsapp.WithClaimTTL(cfg.ManifestClaimTTL),
		manifestsapp.WithCollectionType(cfg.InvoicingCollectionType),
	}
	providerOpts := []manifestinvoicing.Option{
		manifestinvoicing.WithLogger(logger),
		manifestinvoicing.WithRateLimit(cfg.InvoicingRateLimit, 1),
	}
	var provider *manifestinvoicing.Provider
	if client != nil {
		provider = manifestinvoicing.NewProvider(client, providerOpts...)
		opts = append(opts, manifestsapp.WithCredentials(manifestinvoicing.NewKeyring(client, 0)))
	} else {
		provider = manifestinvoicing.NewProvider(nil, providerOpts...)
	}
	if infra.Redis != nil {
		opts = append(opts, manifestsapp.WithRunLock(manifestlock.NewRunLock(infra.Redis, cfg.ManifestLockTTL, logger)))
	}

	core := manifestsapp.NewService(repo, provider, opts...)
	return manifestsobs.New(
		core,
		manifestsobs.WithLogger(logger),
		manifestsobs.WithTracer(instruments.Tracer("internal.manifests.application")),
		manifestsobs.WithMeter(instruments.Meter("internal.manifests.application")),
	)
}

// BuildTracker wires the processing error tracker with persistence and the order pipeline runner.
func BuildTracker(cfg Config, infra Infrastructure, instruments *platformobservability.Instruments) errorsports.Tracker {
	logger := instruments.Logger
	var repo errorsports.Repository = errorsmemory.NewRepository()
	if infra.DB != nil {
		repo = errorspostgres.NewRepository(infra.DB)
		logger.Info("processing error repository configured with postgres")
	}

	var runner errorsports.OperationRunner = errorspipeline.Disabled{}
	if cfg.PipelineBaseURL == "" {
		logger.Warn("PIPELINE_BASE_URL not set, processing error retries will fail")
	} else if client, err := pipelineclient.NewPipelineClient(cfg.PipelineBaseURL, nil); err != nil {
		logger.Warn("failed to build pipeline client", slog.String("error", err.Error()))
	} else {
		runner = errorspipeline.NewRunner(client)
	}

	core := errorsapp.NewTracker(repo, runner, errorsapp.WithMaxRetries(cfg.ProcessingErrorMaxRetries))
	return errorsobs.New(
		core,
		errorsobs.WithLogger(logger),
		errorsobs.WithTracer(instruments.Tracer("internal.processingerrors.application")),
		errorsobs.WithMeter(instruments.Meter("internal.processingerrors.application")),
	)
}

// BuildLinker wires the return linker; stock reversals share the link store.
func BuildLinker(infra Infrastructure, instruments *platformobservability.Instruments) returnsports.Linker {
	logger := instruments.Logger
	var (
		repo  returnsports.Repository    = returnsmemory.NewRepository()
		stock returnsports.StockReversal = returnsmemory.NewStockLedger()
	)
	if infra.DB != nil {
		repo = returnspostgres.NewRepository(infra.DB)
		stock = returnspostgres.NewStockReversals(infra.DB)
		logger.Info("return link repository configured with postgres")
	}
	core := returnsapp.NewLinker(repo, stock)
	return returnsobs.New(
		core,
		returnsobs.WithLogger(logger),
		returnsobs.WithTracer(instruments.Tracer("internal.returns.application")),
		returnsobs.WithMeter(instruments.Meter("internal.returns.application")),
	)
}
