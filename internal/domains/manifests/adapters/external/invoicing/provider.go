package invoicing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	invoicingclient "github.com/Apurer/go-gin-fiscal-server/internal/clients/http/invoicing"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

// ErrUnavailable is returned while the breaker refuses calls to the provider.
var ErrUnavailable = errors.New("invoicing provider unavailable")

// Breaker defaults; provider rejections (4xx) never count as failures.
const (
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
	DefaultBreakerInterval = time.Minute
)

// Client is the subset of the invoicing HTTP client the adapter needs.
type Client interface {
	CancelInvoice(ctx context.Context, companyID int64, series, number string) (invoicingclient.Outcome, error)
	CollectInvoice(ctx context.Context, companyID int64, series, number, collectionType string, date time.Time) (invoicingclient.Outcome, error)
	CompanyConfigured(ctx context.Context, companyID int64) (bool, error)
}

// Provider implements ports.InvoicingProvider on top of the HTTP client behind a circuit breaker.
type Provider struct {
	client  Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *slog.Logger
}

type Option func(*providerOptions)

type providerOptions struct {
	logger   *slog.Logger
	failures uint32
	timeout  time.Duration
	interval time.Duration
	limiter  *rate.Limiter
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *providerOptions) {
		o.logger = logger
	}
}

// WithBreaker tunes how many consecutive failures open the breaker and how long it stays open.
func WithBreaker(failures uint32, openFor time.Duration) Option {
	return func(o *providerOptions) {
		if failures > 0 {
			o.failures = failures
		}
		if openFor > 0 {
			o.timeout = openFor
		}
	}
}

// WithRateLimit caps provider calls per second across the process; perSecond <= 0 leaves calls unthrottled.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *providerOptions) {
		if perSecond <= 0 {
			return
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// NewProvider wires the HTTP client into the outbound provider port.
func NewProvider(client Client, opts ...Option) *Provider {
	cfg := providerOptions{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		failures: DefaultBreakerFailures,
		timeout:  DefaultBreakerTimeout,
		interval: DefaultBreakerInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	p := &Provider{client: client, limiter: cfg.limiter, logger: cfg.logger}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "invoicing-provider",
		MaxRequests: 1,
		Interval:    cfg.interval,
		Timeout:     cfg.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return p
}

// CancelInvoice asks the provider to storno the invoice.
func (p *Provider) CancelInvoice(ctx context.Context, req ports.CancelRequest) (*ports.CancelResult, error) {
	out, err := p.call(ctx, func() (invoicingclient.Outcome, error) {
		return p.client.CancelInvoice(ctx, req.CompanyID, req.Series, req.Number)
	})
	if err != nil {
		return nil, err
	}
	if !out.Accepted {
		return &ports.CancelResult{Error: out.Message}, nil
	}
	res := &ports.CancelResult{Success: true}
	if out.Document != nil {
		res.CancelledInvoiceSeries = out.Document.SeriesName
		res.CancelledInvoiceNumber = out.Document.Number
	}
	return res, nil
}

// CollectInvoice asks the provider to book the collection.
func (p *Provider) CollectInvoice(ctx context.Context, req ports.CollectRequest) (*ports.CollectResult, error) {
	out, err := p.call(ctx, func() (invoicingclient.Outcome, error) {
		return p.client.CollectInvoice(ctx, req.CompanyID, req.Series, req.Number, req.CollectionType, req.CollectionDate)
	})
	if err != nil {
		return nil, err
	}
	if !out.Accepted {
		return &ports.CollectResult{Error: out.Message}, nil
	}
	return &ports.CollectResult{Success: true}, nil
}

// State exposes the breaker state for health reporting.
func (p *Provider) State() gobreaker.State {
	return p.breaker.State()
}

func (p *Provider) call(ctx context.Context, fn func() (invoicingclient.Outcome, error)) (invoicingclient.Outcome, error) {
	if p == nil || p.client == nil {
		return invoicingclient.Outcome{}, errors.New("invoicing provider not configured")
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return invoicingclient.Outcome{}, fmt.Errorf("wait for invoicing rate limit: %w", err)
		}
	}
	res, err := p.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return invoicingclient.Outcome{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return invoicingclient.Outcome{}, err
	}
	return res.(invoicingclient.Outcome), nil
}

var _ ports.InvoicingProvider = (*Provider)(nil)
