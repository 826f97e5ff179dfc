package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid manifest input")
	// ErrPrecondition aborts a whole run before any item is touched.
	ErrPrecondition = errors.New("manifest precondition failed")
	// ErrMissingAssociation marks items without an invoice or without provider configuration.
	ErrMissingAssociation = errors.New("missing association")
	// ErrAlreadyDone marks idempotent no-ops; never reported as a failure.
	ErrAlreadyDone = errors.New("already done")
	// ErrProvider wraps failures returned or raised by the invoicing provider.
	ErrProvider = errors.New("invoicing provider error")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyActor) ||
		errors.Is(err, domain.ErrInvalidKind) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrMissingDocumentDay) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrNotConfirmed) ||
		errors.Is(err, domain.ErrKindMismatch) ||
		errors.Is(err, domain.ErrRunInProgress) ||
		errors.Is(err, ports.ErrClaimConflict) ||
		errors.Is(err, ports.ErrRunLocked) {
		return fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	return err
}
