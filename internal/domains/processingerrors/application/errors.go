package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid processing error input")
	// ErrNotFound is returned for unknown error ids.
	ErrNotFound = ports.ErrNotFound
	// ErrTerminal is returned when acting on a resolved or skipped error.
	ErrTerminal = domain.ErrTerminal
	// ErrRetryLimitReached is returned once the error is FAILED; only Skip moves it on.
	ErrRetryLimitReached = domain.ErrRetryLimitReached
	// ErrInvalidTransition covers concurrent retries of the same error.
	ErrInvalidTransition = domain.ErrInvalidTransition
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyActor) ||
		errors.Is(err, domain.ErrInvalidOperation) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidOrder) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrStaleStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	return err
}
