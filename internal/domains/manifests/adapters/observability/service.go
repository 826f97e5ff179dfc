package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

const tracerName = "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/observability/service"

// Service decorates the manifests service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core manifests service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) GetManifest(ctx context.Context, input types.ManifestIdentifier) (*domain.Manifest, error) {
	ctx, span := s.tracer.Start(ctx, "ManifestsService.GetManifest", trace.WithAttributes(attribute.Int64("manifest.id", input.ID)))
	defer span.End()

	result, err := s.inner.GetManifest(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load manifest", slog.Int64("manifest.id", input.ID))
	}
	span.SetAttributes(attribute.Int("manifest.items", len(result.Items)))
	return result, nil
}

func (s *Service) RequestVerification(ctx context.Context, input types.ManifestIdentifier) (*domain.Manifest, error) {
	ctx, span := s.tracer.Start(ctx, "ManifestsService.RequestVerification", trace.WithAttributes(attribute.Int64("manifest.id", input.ID)))
	defer span.End()

	result, err := s.inner.RequestVerification(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to request verification", slog.Int64("manifest.id", input.ID))
	}
	s.logInfo(ctx, "manifest awaiting verification", slog.Int64("manifest.id", result.ID))
	return result, nil
}

func (s *Service) Confirm(ctx context.Context, input types.ConfirmManifestInput) (*domain.Manifest, error) {
	ctx, span := s.tracer.Start(ctx, "ManifestsService.Confirm",
		trace.WithAttributes(attribute.Int64("manifest.id", input.ID), attribute.String("manifest.actor", input.Actor)))
	defer span.End()

	result, err := s.inner.Confirm(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to confirm manifest", slog.Int64("manifest.id", input.ID))
	}
	s.logInfo(ctx, "manifest confirmed", slog.Int64("manifest.id", result.ID), slog.String("actor", result.ConfirmedBy))
	return result, nil
}

func (s *Service) Process(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error) {
	return s.process(ctx, "Process", "auto", input, s.inner.Process)
}

func (s *Service) ProcessReturn(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error) {
	return s.process(ctx, "ProcessReturn", string(domain.KindReturn), input, s.inner.ProcessReturn)
}

func (s *Service) ProcessDelivery(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error) {
	return s.process(ctx, "ProcessDelivery", string(domain.KindDelivery), input, s.inner.ProcessDelivery)
}

func (s *Service) ListAudit(ctx context.Context, input types.ManifestIdentifier) ([]domain.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ManifestsService.ListAudit", trace.WithAttributes(attribute.Int64("manifest.id", input.ID)))
	defer span.End()

	result, err := s.inner.ListAudit(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list audit entries", slog.Int64("manifest.id", input.ID))
	}
	span.SetAttributes(attribute.Int("audit.entries", len(result)))
	return result, nil
}

type processFunc func(context.Context, types.ProcessManifestInput) (*types.BatchResult, error)

func (s *Service) process(ctx context.Context, op, flow string, input types.ProcessManifestInput, call processFunc) (*types.BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "ManifestsService."+op,
		trace.WithAttributes(
			attribute.Int64("manifest.id", input.ManifestID),
			attribute.String("manifest.flow", flow),
			attribute.String("manifest.actor", input.Actor),
		))
	defer span.End()

	s.logInfo(ctx, "processing manifest", slog.Int64("manifest.id", input.ManifestID), slog.String("flow", flow))
	result, err := call(ctx, input)
	if result != nil {
		span.SetAttributes(
			attribute.Int("manifest.total", result.TotalProcessed),
			attribute.Int("manifest.success", result.SuccessCount),
			attribute.Int("manifest.errors", result.ErrorCount),
			attribute.Int("manifest.skipped", result.SkippedCount),
		)
		s.metrics.recordRun(ctx, flow, result)
	}
	if err != nil {
		return result, s.handleError(ctx, span, err, "manifest processing failed", slog.Int64("manifest.id", input.ManifestID), slog.String("flow", flow))
	}
	for _, itemErr := range result.Errors {
		s.logWarn(ctx, "manifest item failed",
			slog.Int64("manifest.id", input.ManifestID),
			slog.Int64("item.id", itemErr.ItemID),
			slog.String("shipment", itemErr.ShipmentNumber),
			slog.String("invoice", itemErr.InvoiceNumber),
			slog.String("error", itemErr.Error))
	}
	s.logInfo(ctx, "manifest processed",
		slog.Int64("manifest.id", input.ManifestID),
		slog.String("flow", flow),
		slog.Int("total", result.TotalProcessed),
		slog.Int("success", result.SuccessCount),
		slog.Int("errors", result.ErrorCount),
		slog.Int("skipped", result.SkippedCount))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	runs           metric.Int64Counter
	itemsProcessed metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	runs, _ := m.Int64Counter("manifests.runs", metric.WithDescription("Number of manifest processing runs"))
	items, _ := m.Int64Counter("manifests.items_processed", metric.WithDescription("Number of manifest items processed by outcome"))
	return serviceMetrics{runs: runs, itemsProcessed: items}
}

func (m serviceMetrics) recordRun(ctx context.Context, flow string, result *types.BatchResult) {
	if m.runs != nil {
		m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow), attribute.Bool("success", result.Success)))
	}
	if m.itemsProcessed == nil {
		return
	}
	for outcome, n := range map[string]int{
		"success": result.SuccessCount,
		"error":   result.ErrorCount,
		"skipped": result.SkippedCount,
	} {
		if n > 0 {
			m.itemsProcessed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("flow", flow), attribute.String("outcome", outcome)))
		}
	}
}

var _ ports.Service = (*Service)(nil)
