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

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
)

const tracerName = "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/adapters/observability/linker"

// Linker decorates the return linker with tracing, logging, and metrics.
type Linker struct {
	inner  ports.Linker
	tracer trace.Tracer
	logger *slog.Logger
	links  metric.Int64Counter
}

type Option func(*Linker)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Linker) {
		l.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(l *Linker) {
		l.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(l *Linker) {
		if m == nil {
			return
		}
		l.links, _ = m.Int64Counter("returns.links", metric.WithDescription("Number of return link attempts by outcome"))
	}
}

func New(inner ports.Linker, opts ...Option) ports.Linker {
	l := &Linker{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.tracer == nil {
		l.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return l
}

func (l *Linker) Link(ctx context.Context, input types.LinkInput) (*types.LinkResult, error) {
	ctx, span := l.tracer.Start(ctx, "ReturnLinker.Link", trace.WithAttributes(
		attribute.String("return.shipment", input.ReturnShipmentNumber),
		attribute.Int64("order.id", input.OrderID),
	))
	defer span.End()

	result, err := l.inner.Link(ctx, input)
	if err != nil {
		l.count(ctx, "error")
		return result, l.handleError(ctx, span, err, "failed to link return",
			slog.String("return.shipment", input.ReturnShipmentNumber),
			slog.Int64("order.id", input.OrderID))
	}
	outcome := "linked"
	switch {
	case !result.Created && result.AlreadyProcessed:
		outcome = "noop"
	case result.AlreadyProcessed:
		outcome = "already_reversed"
	}
	span.SetAttributes(attribute.String("return.outcome", outcome))
	l.count(ctx, outcome)
	l.logger.LogAttrs(ctx, slog.LevelInfo, "return linked",
		slog.Int64("return.link_id", result.Link.ID),
		slog.String("return.shipment", result.Link.ReturnShipmentNumber),
		slog.Int64("order.id", result.Link.OrderID),
		slog.String("outcome", outcome))
	return result, nil
}

func (l *Linker) Get(ctx context.Context, input types.ShipmentIdentifier) (*domain.ReturnLink, error) {
	ctx, span := l.tracer.Start(ctx, "ReturnLinker.Get", trace.WithAttributes(attribute.String("return.shipment", input.ReturnShipmentNumber)))
	defer span.End()

	result, err := l.inner.Get(ctx, input)
	if err != nil {
		return nil, l.handleError(ctx, span, err, "failed to load return link", slog.String("return.shipment", input.ReturnShipmentNumber))
	}
	return result, nil
}

func (l *Linker) count(ctx context.Context, outcome string) {
	if l.links != nil {
		l.links.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (l *Linker) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if l.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

var _ ports.Linker = (*Linker)(nil)
