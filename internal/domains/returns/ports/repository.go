package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
)

var ErrNotFound = errors.New("return link not found")

// Repository persists return links keyed by shipment number.
type Repository interface {
	// Link inserts the link unless the shipment is already linked; the stored link is
	// returned either way and created reports whether this call inserted it.
	Link(ctx context.Context, link *domain.ReturnLink) (stored *domain.ReturnLink, created bool, err error)
	GetByShipment(ctx context.Context, shipment string) (*domain.ReturnLink, error)
	MarkReversed(ctx context.Context, id int64, at time.Time) error
}
