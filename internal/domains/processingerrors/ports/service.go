package ports

import (
	"context"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

// Tracker exposes the retry/skip use cases (inbound/driving port).
type Tracker interface {
	Record(ctx context.Context, input types.RecordInput) (*domain.ProcessingError, error)
	Get(ctx context.Context, input types.ErrorIdentifier) (*domain.ProcessingError, error)
	// Retry reports operation failures in the returned state, not as an error.
	Retry(ctx context.Context, input types.RetryInput) (*domain.ProcessingError, error)
	Skip(ctx context.Context, input types.SkipInput) (*domain.ProcessingError, error)
	List(ctx context.Context, filter types.ListFilter) ([]*domain.ProcessingError, error)
	Sweep(ctx context.Context, input types.SweepInput) (*types.SweepResult, error)
	Stats(ctx context.Context) (*types.Stats, error)
}
