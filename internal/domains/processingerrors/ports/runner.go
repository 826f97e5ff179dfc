package ports

import (
	"context"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

// OperationRunner re-invokes the failed pipeline step for an order.
type OperationRunner interface {
	Run(ctx context.Context, orderID int64, op domain.Operation) error
}
