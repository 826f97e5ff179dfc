package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/memory"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

var fixedNow = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

type runCall struct {
	orderID int64
	op      domain.Operation
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall
	fn    func(ctx context.Context, orderID int64) error
}

func (r *fakeRunner) Run(ctx context.Context, orderID int64, op domain.Operation) error {
	r.mu.Lock()
	r.calls = append(r.calls, runCall{orderID: orderID, op: op})
	r.mu.Unlock()
	if r.fn == nil {
		return nil
	}
	return r.fn(ctx, orderID)
}

func failing(msg string) func(context.Context, int64) error {
	return func(context.Context, int64) error { return errors.New(msg) }
}

func newTracker(runner *fakeRunner, opts ...Option) (*Tracker, *memory.Repository) {
	repo := memory.NewRepository()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewTracker(repo, runner, opts...), repo
}

func seed(t *testing.T, repo *memory.Repository, orderID int64, retryCount, maxRetries int) *domain.ProcessingError {
	t.Helper()
	e, err := domain.NewProcessingError(orderID, domain.OperationInvoice, "provider timeout", maxRetries, fixedNow)
	require.NoError(t, err)
	e.RetryCount = retryCount
	saved, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
	return saved
}

func TestTracker_Record(t *testing.T) {
	tracker, _ := newTracker(&fakeRunner{}, WithMaxRetries(5))

	e, err := tracker.Record(context.Background(), types.RecordInput{OrderID: 42, Operation: domain.OperationShippingLabel, Message: "courier 500"})
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.Equal(t, 5, e.MaxRetries)
	assert.Equal(t, domain.StatusPending, e.Status)

	_, err = tracker.Record(context.Background(), types.RecordInput{OrderID: 42, Operation: "refund"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTracker_RetrySuccessResolves(t *testing.T) {
	runner := &fakeRunner{}
	tracker, repo := newTracker(runner)
	e := seed(t, repo, 7, 0, 3)

	updated, err := tracker.Retry(context.Background(), types.RetryInput{ID: e.ID, Actor: "ops@shop"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	assert.Equal(t, "ops@shop", updated.ResolvedBy)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, fixedNow, *updated.ResolvedAt)
	assert.Equal(t, []runCall{{orderID: 7, op: domain.OperationInvoice}}, runner.calls)

	stored, err := repo.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, stored.Status)
}

func TestTracker_RetryFailureStaysPending(t *testing.T) {
	tracker, repo := newTracker(&fakeRunner{fn: failing("provider 503")})
	e := seed(t, repo, 7, 0, 3)

	updated, err := tracker.Retry(context.Background(), types.RetryInput{ID: e.ID, Actor: "ops"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, 1, updated.RetryCount)
	assert.Equal(t, "provider 503", updated.Message)
}

func TestTracker_RetryLimitForcesFailed(t *testing.T) {
	runner := &fakeRunner{fn: failing("still broken")}
	tracker, repo := newTracker(runner)
	e := seed(t, repo, 7, 2, 3)

	updated, err := tracker.Retry(context.Background(), types.RetryInput{ID: e.ID, Actor: "ops"})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.RetryCount)
	assert.Equal(t, domain.StatusFailed, updated.Status)

	_, err = tracker.Retry(context.Background(), types.RetryInput{ID: e.ID, Actor: "ops"})
	require.ErrorIs(t, err, ErrRetryLimitReached)
	assert.Len(t, runner.calls, 1)

	stored, err := repo.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.RetryCount)
	assert.Equal(t, domain.StatusFailed, stored.Status)
}

func TestTracker_RetryRejectsTerminalAndUnknown(t *testing.T) {
	tracker, repo := newTracker(&fakeRunner{})
	e := seed(t, repo, 7, 0, 3)
	_, err := tracker.Skip(context.Background(), types.SkipInput{ID: e.ID, Actor: "ops", Note: "duplicate order"})
	require.NoError(t, err)

	_, err = tracker.Retry(context.Background(), types.RetryInput{ID: e.ID, Actor: "ops"})
	assert.ErrorIs(t, err, ErrTerminal)

	_, err = tracker.Retry(context.Background(), types.RetryInput{ID: 999, Actor: "ops"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = tracker.Retry(context.Background(), types.RetryInput{ID: e.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTracker_RetryRecoversPanic(t *testing.T) {
	tracker, repo := newTracker(&fakeRunner{fn: func(context.Context, int64) error { panic("nil label") }})
	e := seed(t, repo, 7, 0, 3)

	updated, err := tracker.Retry(context.Background(), types.RetryInput{ID: e.ID, Actor: "ops"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Contains(t, updated.Message, "panicked")
}

func TestTracker_RetryEnforcesTimeout(t *testing.T) {
	runner := &fakeRunner{fn: func(ctx context.Context, _ int64) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	tracker, repo := newTracker(runner, WithRunTimeout(20*time.Millisecond))
	e := seed(t, repo, 7, 0, 3)

	updated, err := tracker.Retry(context.Background(), types.RetryInput{ID: e.ID, Actor: "ops"})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RetryCount)
	assert.Contains(t, updated.Message, context.DeadlineExceeded.Error())
}

func TestTracker_SkipFailedError(t *testing.T) {
	tracker, repo := newTracker(&fakeRunner{fn: failing("x")})
	e := seed(t, repo, 7, 0, 1)
	_, err := tracker.Retry(context.Background(), types.RetryInput{ID: e.ID, Actor: "ops"})
	require.NoError(t, err)

	skipped, err := tracker.Skip(context.Background(), types.SkipInput{ID: e.ID, Actor: "ops", Note: "label printed by hand"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, skipped.Status)
	assert.Equal(t, "label printed by hand", skipped.ResolutionNote)

	_, err = tracker.Skip(context.Background(), types.SkipInput{ID: e.ID, Actor: "ops"})
	assert.ErrorIs(t, err, ErrTerminal)
}

func TestTracker_ListFilters(t *testing.T) {
	tracker, _ := newTracker(&fakeRunner{})
	ctx := context.Background()
	_, err := tracker.Record(ctx, types.RecordInput{OrderID: 1, Operation: domain.OperationInvoice})
	require.NoError(t, err)
	label, err := tracker.Record(ctx, types.RecordInput{OrderID: 2, Operation: domain.OperationShippingLabel})
	require.NoError(t, err)
	_, err = tracker.Skip(ctx, types.SkipInput{ID: label.ID, Actor: "ops"})
	require.NoError(t, err)

	all, err := tracker.List(ctx, types.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	labels, err := tracker.List(ctx, types.ListFilter{Operation: domain.OperationShippingLabel})
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, int64(2), labels[0].OrderID)

	pending, err := tracker.List(ctx, types.ListFilter{Status: domain.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].OrderID)

	_, err = tracker.List(ctx, types.ListFilter{Status: "open"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTracker_SweepOnlyTouchesPending(t *testing.T) {
	runner := &fakeRunner{fn: func(_ context.Context, orderID int64) error {
		if orderID == 2 {
			return errors.New("still down")
		}
		return nil
	}}
	tracker, repo := newTracker(runner)
	ctx := context.Background()
	ok := seed(t, repo, 1, 0, 3)
	lastTry := seed(t, repo, 2, 2, 3)
	skipped := seed(t, repo, 3, 0, 3)
	_, err := tracker.Skip(ctx, types.SkipInput{ID: skipped.ID, Actor: "ops"})
	require.NoError(t, err)
	exhausted := seed(t, repo, 4, 3, 3)

	result, err := tracker.Sweep(ctx, types.SweepInput{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, types.SweepResult{Attempted: 2, Resolved: 1, Failed: 1}, *result)

	for _, call := range runner.calls {
		assert.NotEqual(t, int64(3), call.orderID)
		assert.NotEqual(t, int64(4), call.orderID)
	}

	resolved, err := repo.Get(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, SweepActor, resolved.ResolvedBy)
	failed, err := repo.Get(ctx, lastTry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, failed.Status)
	untouched, err := repo.Get(ctx, exhausted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, untouched.Status)
}

func seedRetrying(t *testing.T, repo *memory.Repository, orderID int64, since time.Time) *domain.ProcessingError {
	t.Helper()
	e, err := domain.NewProcessingError(orderID, domain.OperationInvoice, "provider timeout", 3, since)
	require.NoError(t, err)
	require.NoError(t, e.BeginRetry(since, since))
	saved, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
	return saved
}

func TestTracker_RetryTakesOverAbandonedRetry(t *testing.T) {
	runner := &fakeRunner{}
	tracker, repo := newTracker(runner, WithRunTimeout(time.Minute))
	ctx := context.Background()
	abandoned := seedRetrying(t, repo, 11, fixedNow.Add(-time.Hour))
	inFlight := seedRetrying(t, repo, 12, fixedNow.Add(-30*time.Second))

	updated, err := tracker.Retry(ctx, types.RetryInput{ID: abandoned.ID, Actor: "ops"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, int64(11), runner.calls[0].orderID)

	_, err = tracker.Retry(ctx, types.RetryInput{ID: inFlight.ID, Actor: "ops"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, runner.calls, 1)
}

func TestTracker_SweepPicksUpAbandonedRetry(t *testing.T) {
	runner := &fakeRunner{fn: failing("still down")}
	tracker, repo := newTracker(runner, WithRunTimeout(time.Minute))
	ctx := context.Background()
	abandoned := seedRetrying(t, repo, 21, fixedNow.Add(-time.Hour))
	seedRetrying(t, repo, 22, fixedNow.Add(-30*time.Second))

	result, err := tracker.Sweep(ctx, types.SweepInput{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, types.SweepResult{Attempted: 1, Pending: 1}, *result)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, int64(21), runner.calls[0].orderID)

	stored, err := repo.Get(ctx, abandoned.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "still down", stored.Message)
}

func TestTracker_Stats(t *testing.T) {
	tracker, repo := newTracker(&fakeRunner{})
	ctx := context.Background()
	seed(t, repo, 1, 0, 3)
	e := seed(t, repo, 2, 0, 3)
	_, err := tracker.Retry(ctx, types.RetryInput{ID: e.ID, Actor: "ops"})
	require.NoError(t, err)

	stats, err := tracker.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusPending])
	assert.Equal(t, 1, stats.ByStatus[domain.StatusResolved])
	assert.Equal(t, 0, stats.ByStatus[domain.StatusFailed])
}
