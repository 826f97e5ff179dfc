package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

const (
	// SweepActor is recorded as resolver for errors fixed by the automatic sweep.
	SweepActor = "system:error-sweeper"

	defaultSweepLimit = 50
	defaultRunTimeout = 30 * time.Second
	// Retries without a run timeout are considered abandoned after this long.
	defaultAbandonAfter = 10 * time.Minute
)

// Tracker drives the retry/skip state machine of processing errors.
type Tracker struct {
	repo       ports.Repository
	runner     ports.OperationRunner
	now        func() time.Time
	maxRetries int
	runTimeout time.Duration
}

// Option customises the tracker wiring.
type Option func(*Tracker)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithMaxRetries sets the limit applied to errors recorded without one.
func WithMaxRetries(n int) Option {
	return func(t *Tracker) {
		t.maxRetries = n
	}
}

// WithRunTimeout bounds every re-invocation of the pipeline step.
func WithRunTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		t.runTimeout = d
	}
}

func NewTracker(repo ports.Repository, runner ports.OperationRunner, opts ...Option) *Tracker {
	t := &Tracker{
		repo:       repo,
		runner:     runner,
		now:        time.Now,
		maxRetries: domain.DefaultMaxRetries,
		runTimeout: defaultRunTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// Record stores a new pending error raised by the order pipeline.
func (t *Tracker) Record(ctx context.Context, input types.RecordInput) (*domain.ProcessingError, error) {
	maxRetries := input.MaxRetries
	if maxRetries <= 0 {
		maxRetries = t.maxRetries
	}
	e, err := domain.NewProcessingError(input.OrderID, input.Operation, input.Message, maxRetries, t.now())
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := t.repo.Create(ctx, e)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (t *Tracker) Get(ctx context.Context, input types.ErrorIdentifier) (*domain.ProcessingError, error) {
	e, err := t.repo.Get(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// Retry re-runs the failed step once. A failing step is recorded on the error and the
// new state is returned without an error.
func (t *Tracker) Retry(ctx context.Context, input types.RetryInput) (*domain.ProcessingError, error) {
	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return nil, mapError(domain.ErrEmptyActor)
	}
	e, err := t.repo.Get(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return t.retry(ctx, e, actor)
}

// Skip closes the error manually with a note.
func (t *Tracker) Skip(ctx context.Context, input types.SkipInput) (*domain.ProcessingError, error) {
	e, err := t.repo.Get(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	from := e.Status
	if err := e.Skip(input.Actor, input.Note, t.now()); err != nil {
		return nil, mapError(err)
	}
	if err := t.repo.Update(ctx, e, from); err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (t *Tracker) List(ctx context.Context, filter types.ListFilter) ([]*domain.ProcessingError, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	if filter.Operation != "" && !filter.Operation.IsValid() {
		return nil, mapError(domain.ErrInvalidOperation)
	}
	items, err := t.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// Sweep retries pending errors below their limit, plus retries abandoned mid-run.
// Failed, skipped and resolved errors are never touched.
func (t *Tracker) Sweep(ctx context.Context, input types.SweepInput) (*types.SweepResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSweepLimit
	}
	candidates, err := t.repo.ListRetryable(ctx, limit, t.staleBefore())
	if err != nil {
		return nil, mapError(err)
	}
	result := &types.SweepResult{}
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		updated, err := t.retry(ctx, candidate, SweepActor)
		if err != nil {
			if isStateConflict(err) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Attempted++
		switch updated.Status {
		case domain.StatusResolved:
			result.Resolved++
		case domain.StatusFailed:
			result.Failed++
		default:
			result.Pending++
		}
	}
	return result, nil
}

func (t *Tracker) Stats(ctx context.Context) (*types.Stats, error) {
	counts, err := t.repo.CountByStatus(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	stats := &types.Stats{ByStatus: map[domain.Status]int{}}
	for _, status := range []domain.Status{
		domain.StatusPending,
		domain.StatusRetrying,
		domain.StatusResolved,
		domain.StatusFailed,
		domain.StatusSkipped,
	} {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}
	return stats, nil
}

// staleBefore is the cut-off past which a retrying error can no longer have a live run.
func (t *Tracker) staleBefore() time.Time {
	abandonAfter := defaultAbandonAfter
	if t.runTimeout > 0 {
		abandonAfter = 2 * t.runTimeout
	}
	return t.now().Add(-abandonAfter)
}

func (t *Tracker) retry(ctx context.Context, e *domain.ProcessingError, actor string) (*domain.ProcessingError, error) {
	from := e.Status
	staleBefore := t.staleBefore()
	if err := e.BeginRetry(t.now(), staleBefore); err != nil {
		return nil, mapError(err)
	}
	claim := func() error { return t.repo.Update(ctx, e, from) }
	if from == domain.StatusRetrying {
		claim = func() error { return t.repo.Reclaim(ctx, e, staleBefore) }
	}
	if err := claim(); err != nil {
		return nil, mapError(err)
	}

	runErr := t.run(context.WithoutCancel(ctx), e)
	if runErr == nil {
		err := e.RetrySucceeded(actor, t.now())
		if err != nil {
			return nil, mapError(err)
		}
	} else if err := e.RetryFailed(runErr.Error(), t.now()); err != nil {
		return nil, mapError(err)
	}
	if err := t.repo.Update(context.WithoutCancel(ctx), e, domain.StatusRetrying); err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (t *Tracker) run(ctx context.Context, e *domain.ProcessingError) (err error) {
	if t.runner == nil {
		return errors.New("no runner configured for processing errors")
	}
	if t.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.runTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s for order %d panicked: %v", e.Operation, e.OrderID, r)
		}
	}()
	return t.runner.Run(ctx, e.OrderID, e.Operation)
}

func isStateConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrTerminal) ||
		errors.Is(err, ErrRetryLimitReached)
}

var _ ports.Tracker = (*Tracker)(nil)
