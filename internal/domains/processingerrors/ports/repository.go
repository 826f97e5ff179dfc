package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

var (
	ErrNotFound = errors.New("processing error not found")
	// ErrStaleStatus is returned when the stored status no longer matches the expected one.
	ErrStaleStatus = errors.New("processing error status changed concurrently")
)

// Repository persists processing errors.
type Repository interface {
	Create(ctx context.Context, e *domain.ProcessingError) (*domain.ProcessingError, error)
	Get(ctx context.Context, id int64) (*domain.ProcessingError, error)
	// Update writes e only while the stored status still equals from.
	Update(ctx context.Context, e *domain.ProcessingError, from domain.Status) error
	// Reclaim writes e only while the stored error is retrying and was last updated before staleBefore.
	Reclaim(ctx context.Context, e *domain.ProcessingError, staleBefore time.Time) error
	List(ctx context.Context, filter types.ListFilter) ([]*domain.ProcessingError, error)
	// ListRetryable returns pending errors below their retry limit, plus retrying errors
	// abandoned before staleBefore, oldest first.
	ListRetryable(ctx context.Context, limit int, staleBefore time.Time) ([]*domain.ProcessingError, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
}
