package ports

import (
	"context"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
)

// Linker exposes the return linking use cases (inbound/driving port).
type Linker interface {
	Link(ctx context.Context, input types.LinkInput) (*types.LinkResult, error)
	Get(ctx context.Context, input types.ShipmentIdentifier) (*domain.ReturnLink, error)
}
