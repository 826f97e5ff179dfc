package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func TestNewProcessingError(t *testing.T) {
	e, err := NewProcessingError(10, OperationInvoice, "  provider timeout ", 0, at)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, DefaultMaxRetries, e.MaxRetries)
	assert.Equal(t, "provider timeout", e.Message)

	_, err = NewProcessingError(0, OperationInvoice, "x", 3, at)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = NewProcessingError(1, Operation("refund"), "x", 3, at)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestRetryFailedReachesLimit(t *testing.T) {
	e, err := NewProcessingError(10, OperationShippingLabel, "courier down", 2, at)
	require.NoError(t, err)

	require.NoError(t, e.BeginRetry(at, at))
	require.NoError(t, e.RetryFailed("courier still down", at))
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, 1, e.RetryCount)
	assert.Equal(t, "courier still down", e.Message)

	require.NoError(t, e.BeginRetry(at, at))
	require.NoError(t, e.RetryFailed("", at))
	assert.Equal(t, StatusFailed, e.Status)
	assert.Equal(t, 2, e.RetryCount)
	assert.Equal(t, "courier still down", e.Message)

	assert.ErrorIs(t, e.BeginRetry(at, at), ErrRetryLimitReached)
	assert.Equal(t, 2, e.RetryCount)
}

func TestRetrySucceededResolves(t *testing.T) {
	e, err := NewProcessingError(10, OperationInvoice, "x", 3, at)
	require.NoError(t, err)
	require.NoError(t, e.BeginRetry(at, at))

	assert.ErrorIs(t, e.RetrySucceeded(" ", at), ErrEmptyActor)
	require.NoError(t, e.RetrySucceeded("ops", at))
	assert.Equal(t, StatusResolved, e.Status)
	assert.Equal(t, "ops", e.ResolvedBy)
	require.NotNil(t, e.ResolvedAt)
	assert.ErrorIs(t, e.BeginRetry(at, at), ErrTerminal)
	assert.ErrorIs(t, e.Skip("ops", "late", at), ErrTerminal)
}

func TestSkip(t *testing.T) {
	e, err := NewProcessingError(10, OperationInvoice, "x", 1, at)
	require.NoError(t, err)
	require.NoError(t, e.BeginRetry(at, at))
	require.NoError(t, e.RetryFailed("x", at))
	require.Equal(t, StatusFailed, e.Status)

	require.NoError(t, e.Skip("ops", " handled manually ", at))
	assert.Equal(t, StatusSkipped, e.Status)
	assert.Equal(t, "handled manually", e.ResolutionNote)
	assert.ErrorIs(t, e.BeginRetry(at, at), ErrTerminal)
}

func TestBeginRetryWhileRetrying(t *testing.T) {
	e, err := NewProcessingError(10, OperationInvoice, "x", 3, at)
	require.NoError(t, err)
	require.NoError(t, e.BeginRetry(at, at))
	assert.ErrorIs(t, e.BeginRetry(at, at), ErrInvalidTransition)
}

func TestAbandonedRetryCanBeTakenOver(t *testing.T) {
	e, err := NewProcessingError(10, OperationInvoice, "x", 3, at)
	require.NoError(t, err)
	require.NoError(t, e.BeginRetry(at, at))
	require.False(t, e.RetryStale(at))

	later := at.Add(time.Hour)
	staleBefore := later.Add(-time.Minute)
	require.True(t, e.RetryStale(staleBefore))
	require.NoError(t, e.CanRetry(staleBefore))
	require.NoError(t, e.BeginRetry(later, staleBefore))
	assert.Equal(t, StatusRetrying, e.Status)
	assert.Equal(t, later, e.UpdatedAt)
	assert.Equal(t, 0, e.RetryCount)
	assert.ErrorIs(t, e.BeginRetry(later, staleBefore), ErrInvalidTransition)
}

func TestClone(t *testing.T) {
	e, err := NewProcessingError(10, OperationInvoice, "x", 3, at)
	require.NoError(t, err)
	require.NoError(t, e.BeginRetry(at, at))
	require.NoError(t, e.RetryFailed("y", at))

	clone := e.Clone()
	*clone.LastRetryAt = at.Add(time.Hour)
	assert.Equal(t, at, *e.LastRetryAt)
}
