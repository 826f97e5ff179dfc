package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
)

var (
	ErrInvalidInput = errors.New("invalid return link input")
	ErrNotFound     = ports.ErrNotFound
	// ErrConflict is returned when the shipment is already linked to another order.
	ErrConflict = errors.New("return shipment already linked to a different order")
	// ErrReversal wraps stock reversal failures; the link itself is kept and a re-link retries the reversal.
	ErrReversal = errors.New("stock reversal failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyShipment) ||
		errors.Is(err, domain.ErrInvalidOrder) ||
		errors.Is(err, domain.ErrEmptyActor) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
