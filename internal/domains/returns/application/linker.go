package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
)

// Linker maps scanned return shipments to orders and reverses their stock once.
type Linker struct {
	repo  ports.Repository
	stock ports.StockReversal
	now   func() time.Time
}

type Option func(*Linker)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(l *Linker) {
		l.now = now
	}
}

func NewLinker(repo ports.Repository, stock ports.StockReversal, opts ...Option) *Linker {
	l := &Linker{repo: repo, stock: stock, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Link is idempotent per (shipment, order) pair. A pair whose stock was already
// reversed returns without calling the stock ledger again.
func (l *Linker) Link(ctx context.Context, input types.LinkInput) (*types.LinkResult, error) {
	link, err := domain.NewReturnLink(input.ReturnShipmentNumber, input.OrderID, input.Actor, l.now())
	if err != nil {
		return nil, mapError(err)
	}
	stored, created, err := l.repo.Link(ctx, link)
	if err != nil {
		return nil, mapError(err)
	}
	if stored.OrderID != link.OrderID {
		return nil, fmt.Errorf("%w: shipment %s belongs to order %d", ErrConflict, stored.ReturnShipmentNumber, stored.OrderID)
	}
	result := &types.LinkResult{Link: stored, Created: created}
	if stored.StockReversed {
		result.AlreadyProcessed = true
		return result, nil
	}

	reversal, err := l.stock.Reverse(ctx, stored.OrderID, stored.ReturnShipmentNumber)
	if err != nil {
		return result, fmt.Errorf("%w: order %d: %w", ErrReversal, stored.OrderID, err)
	}
	at := l.now()
	if err := l.repo.MarkReversed(ctx, stored.ID, at); err != nil {
		return result, mapError(err)
	}
	stored.MarkReversed(at)
	result.AlreadyProcessed = reversal.AlreadyProcessed
	return result, nil
}

func (l *Linker) Get(ctx context.Context, input types.ShipmentIdentifier) (*domain.ReturnLink, error) {
	shipment := domain.NormalizeShipment(input.ReturnShipmentNumber)
	if shipment == "" {
		return nil, mapError(domain.ErrEmptyShipment)
	}
	link, err := l.repo.GetByShipment(ctx, shipment)
	if err != nil {
		return nil, mapError(err)
	}
	return link, nil
}

var _ ports.Linker = (*Linker)(nil)
