package domain

import (
	"errors"
	"strings"
	"time"
)

// Operation names the pipeline step that failed for an order.
type Operation string

const (
	OperationInvoice       Operation = "invoice"
	OperationShippingLabel Operation = "shipping_label"
)

// Status is the retry state of a processing error.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRetrying Status = "retrying"
	StatusResolved Status = "resolved"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
)

// DefaultMaxRetries applies when the pipeline records an error without a limit.
const DefaultMaxRetries = 3

var (
	ErrInvalidOperation  = errors.New("processing error operation is invalid")
	ErrInvalidStatus     = errors.New("processing error status is invalid")
	ErrInvalidTransition = errors.New("processing error status transition not allowed")
	ErrInvalidOrder      = errors.New("order id must be positive")
	ErrEmptyActor        = errors.New("actor is required")
	ErrTerminal          = errors.New("processing error is already closed")
	ErrRetryLimitReached = errors.New("processing error reached its retry limit")
)

// ProcessingError is one failed invoice or label generation attempt for an order.
type ProcessingError struct {
	ID             int64
	OrderID        int64
	Operation      Operation
	Status         Status
	Message        string
	RetryCount     int
	MaxRetries     int
	LastRetryAt    *time.Time
	ResolvedAt     *time.Time
	ResolvedBy     string
	ResolutionNote string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProcessingError builds a pending error as recorded by the order pipeline.
func NewProcessingError(orderID int64, op Operation, message string, maxRetries int, at time.Time) (*ProcessingError, error) {
	if orderID <= 0 {
		return nil, ErrInvalidOrder
	}
	if !op.IsValid() {
		return nil, ErrInvalidOperation
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &ProcessingError{
		OrderID:    orderID,
		Operation:  op,
		Status:     StatusPending,
		Message:    strings.TrimSpace(message),
		MaxRetries: maxRetries,
		CreatedAt:  at,
		UpdatedAt:  at,
	}, nil
}

func (o Operation) IsValid() bool {
	switch o {
	case OperationInvoice, OperationShippingLabel:
		return true
	default:
		return false
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRetrying, StatusResolved, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the error left the active set for good.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusResolved, StatusSkipped:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces PENDING -> RETRYING -> RESOLVED | PENDING | FAILED and the manual skip edges.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusRetrying || next == StatusSkipped
	case StatusRetrying:
		return next == StatusResolved || next == StatusPending || next == StatusFailed || next == StatusSkipped
	case StatusFailed:
		return next == StatusSkipped
	case StatusResolved, StatusSkipped:
		return false
	default:
		return false
	}
}

// CanRetry reports why a retry is not allowed, or nil. An error stuck in retrying since
// before staleBefore belongs to an attempt that never finished and may be retried again.
func (e *ProcessingError) CanRetry(staleBefore time.Time) error {
	if e.Status.IsTerminal() {
		return ErrTerminal
	}
	if e.Status == StatusFailed || e.RetryCount >= e.MaxRetries {
		return ErrRetryLimitReached
	}
	if e.Status == StatusRetrying && e.RetryStale(staleBefore) {
		return nil
	}
	if e.Status != StatusPending {
		return ErrInvalidTransition
	}
	return nil
}

// RetryStale reports whether a retrying error was last touched before staleBefore.
func (e *ProcessingError) RetryStale(staleBefore time.Time) bool {
	return e.Status == StatusRetrying && e.UpdatedAt.Before(staleBefore)
}

// BeginRetry marks the error as being retried.
func (e *ProcessingError) BeginRetry(at, staleBefore time.Time) error {
	if err := e.CanRetry(staleBefore); err != nil {
		return err
	}
	e.Status = StatusRetrying
	e.UpdatedAt = at
	return nil
}

// RetrySucceeded closes the error as resolved by actor.
func (e *ProcessingError) RetrySucceeded(actor string, at time.Time) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrEmptyActor
	}
	if err := e.transition(StatusResolved, at); err != nil {
		return err
	}
	e.LastRetryAt = timePtr(at)
	e.ResolvedAt = timePtr(at)
	e.ResolvedBy = actor
	return nil
}

// RetryFailed counts the attempt; the error becomes FAILED once the limit is reached.
func (e *ProcessingError) RetryFailed(message string, at time.Time) error {
	next := StatusPending
	if e.RetryCount+1 >= e.MaxRetries {
		next = StatusFailed
	}
	if err := e.transition(next, at); err != nil {
		return err
	}
	e.RetryCount++
	e.LastRetryAt = timePtr(at)
	if message = strings.TrimSpace(message); message != "" {
		e.Message = message
	}
	return nil
}

// Skip closes the error manually; it is never reprocessed afterwards.
func (e *ProcessingError) Skip(actor, note string, at time.Time) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrEmptyActor
	}
	if e.Status.IsTerminal() {
		return ErrTerminal
	}
	if err := e.transition(StatusSkipped, at); err != nil {
		return err
	}
	e.ResolvedAt = timePtr(at)
	e.ResolvedBy = actor
	e.ResolutionNote = strings.TrimSpace(note)
	return nil
}

// Clone returns a deep copy.
func (e *ProcessingError) Clone() *ProcessingError {
	if e == nil {
		return nil
	}
	clone := *e
	if e.LastRetryAt != nil {
		clone.LastRetryAt = timePtr(*e.LastRetryAt)
	}
	if e.ResolvedAt != nil {
		clone.ResolvedAt = timePtr(*e.ResolvedAt)
	}
	return &clone
}

func (e *ProcessingError) transition(next Status, at time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !e.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	e.Status = next
	e.UpdatedAt = at
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
