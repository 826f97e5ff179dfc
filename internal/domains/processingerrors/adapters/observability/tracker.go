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

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

const tracerName = "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/observability/tracker"

// Tracker decorates the processing error tracker with tracing, logging, and metrics.
type Tracker struct {
	inner   ports.Tracker
	tracer  trace.Tracer
	logger  *slog.Logger
	retries metric.Int64Counter
}

type Option func(*Tracker)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(t *Tracker) {
		t.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(t *Tracker) {
		if m == nil {
			return
		}
		t.retries, _ = m.Int64Counter("processing_errors.retries", metric.WithDescription("Number of processing error retries by outcome"))
	}
}

func New(inner ports.Tracker, opts ...Option) ports.Tracker {
	t := &Tracker{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.tracer == nil {
		t.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return t
}

func (t *Tracker) Record(ctx context.Context, input types.RecordInput) (*domain.ProcessingError, error) {
	ctx, span := t.tracer.Start(ctx, "ProcessingErrorTracker.Record", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID),
		attribute.String("processing_error.operation", string(input.Operation)),
	))
	defer span.End()

	result, err := t.inner.Record(ctx, input)
	if err != nil {
		return nil, t.handleError(ctx, span, err, "failed to record processing error", slog.Int64("order.id", input.OrderID))
	}
	t.logger.LogAttrs(ctx, slog.LevelWarn, "processing error recorded",
		slog.Int64("processing_error.id", result.ID),
		slog.Int64("order.id", result.OrderID),
		slog.String("operation", string(result.Operation)),
		slog.String("message", result.Message))
	return result, nil
}

func (t *Tracker) Get(ctx context.Context, input types.ErrorIdentifier) (*domain.ProcessingError, error) {
	ctx, span := t.tracer.Start(ctx, "ProcessingErrorTracker.Get", trace.WithAttributes(attribute.Int64("processing_error.id", input.ID)))
	defer span.End()

	result, err := t.inner.Get(ctx, input)
	if err != nil {
		return nil, t.handleError(ctx, span, err, "failed to load processing error", slog.Int64("processing_error.id", input.ID))
	}
	return result, nil
}

func (t *Tracker) Retry(ctx context.Context, input types.RetryInput) (*domain.ProcessingError, error) {
	ctx, span := t.tracer.Start(ctx, "ProcessingErrorTracker.Retry", trace.WithAttributes(
		attribute.Int64("processing_error.id", input.ID),
		attribute.String("processing_error.actor", input.Actor),
	))
	defer span.End()

	result, err := t.inner.Retry(ctx, input)
	if err != nil {
		t.count(ctx, "rejected")
		return nil, t.handleError(ctx, span, err, "processing error retry rejected", slog.Int64("processing_error.id", input.ID))
	}
	span.SetAttributes(
		attribute.String("processing_error.status", string(result.Status)),
		attribute.Int("processing_error.retry_count", result.RetryCount),
	)
	t.count(ctx, string(result.Status))
	level := slog.LevelInfo
	if result.Status != domain.StatusResolved {
		level = slog.LevelWarn
	}
	t.logger.LogAttrs(ctx, level, "processing error retried",
		slog.Int64("processing_error.id", result.ID),
		slog.String("status", string(result.Status)),
		slog.Int("retry_count", result.RetryCount),
		slog.Int("max_retries", result.MaxRetries))
	return result, nil
}

func (t *Tracker) Skip(ctx context.Context, input types.SkipInput) (*domain.ProcessingError, error) {
	ctx, span := t.tracer.Start(ctx, "ProcessingErrorTracker.Skip", trace.WithAttributes(attribute.Int64("processing_error.id", input.ID)))
	defer span.End()

	result, err := t.inner.Skip(ctx, input)
	if err != nil {
		return nil, t.handleError(ctx, span, err, "failed to skip processing error", slog.Int64("processing_error.id", input.ID))
	}
	t.logger.LogAttrs(ctx, slog.LevelInfo, "processing error skipped",
		slog.Int64("processing_error.id", result.ID),
		slog.String("actor", result.ResolvedBy))
	return result, nil
}

func (t *Tracker) List(ctx context.Context, filter types.ListFilter) ([]*domain.ProcessingError, error) {
	ctx, span := t.tracer.Start(ctx, "ProcessingErrorTracker.List", trace.WithAttributes(
		attribute.String("filter.status", string(filter.Status)),
		attribute.String("filter.operation", string(filter.Operation)),
	))
	defer span.End()

	result, err := t.inner.List(ctx, filter)
	if err != nil {
		return nil, t.handleError(ctx, span, err, "failed to list processing errors")
	}
	span.SetAttributes(attribute.Int("processing_errors.count", len(result)))
	return result, nil
}

func (t *Tracker) Sweep(ctx context.Context, input types.SweepInput) (*types.SweepResult, error) {
	ctx, span := t.tracer.Start(ctx, "ProcessingErrorTracker.Sweep", trace.WithAttributes(attribute.Int("sweep.limit", input.Limit)))
	defer span.End()

	result, err := t.inner.Sweep(ctx, input)
	if result != nil {
		span.SetAttributes(
			attribute.Int("sweep.attempted", result.Attempted),
			attribute.Int("sweep.resolved", result.Resolved),
			attribute.Int("sweep.failed", result.Failed),
		)
		for outcome, n := range map[string]int{
			string(domain.StatusResolved): result.Resolved,
			string(domain.StatusPending):  result.Pending,
			string(domain.StatusFailed):   result.Failed,
		} {
			if n > 0 && t.retries != nil {
				t.retries.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
			}
		}
	}
	if err != nil {
		return result, t.handleError(ctx, span, err, "processing error sweep failed")
	}
	t.logger.LogAttrs(ctx, slog.LevelInfo, "processing error sweep finished",
		slog.Int("attempted", result.Attempted),
		slog.Int("resolved", result.Resolved),
		slog.Int("pending", result.Pending),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func (t *Tracker) Stats(ctx context.Context) (*types.Stats, error) {
	ctx, span := t.tracer.Start(ctx, "ProcessingErrorTracker.Stats")
	defer span.End()

	result, err := t.inner.Stats(ctx)
	if err != nil {
		return nil, t.handleError(ctx, span, err, "failed to count processing errors")
	}
	return result, nil
}

func (t *Tracker) count(ctx context.Context, outcome string) {
	if t.retries != nil {
		t.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (t *Tracker) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if t.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		t.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

var _ ports.Tracker = (*Tracker)(nil)
