package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps processing errors in memory.
type Repository struct {
	mu     sync.RWMutex
	items  map[int64]*domain.ProcessingError
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{items: map[int64]*domain.ProcessingError{}}
}

func (r *Repository) Create(_ context.Context, e *domain.ProcessingError) (*domain.ProcessingError, error) {
	if e == nil {
		return nil, errors.New("processing error is nil")
	}
	clone := e.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.items[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) Get(_ context.Context, id int64) (*domain.ProcessingError, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return e.Clone(), nil
}

func (r *Repository) Update(_ context.Context, e *domain.ProcessingError, from domain.Status) error {
	if e == nil {
		return errors.New("processing error is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[e.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if current.Status != from {
		return ports.ErrStaleStatus
	}
	r.items[e.ID] = e.Clone()
	return nil
}

func (r *Repository) Reclaim(_ context.Context, e *domain.ProcessingError, staleBefore time.Time) error {
	if e == nil {
		return errors.New("processing error is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[e.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if !current.RetryStale(staleBefore) {
		return ports.ErrStaleStatus
	}
	r.items[e.ID] = e.Clone()
	return nil
}

func (r *Repository) List(_ context.Context, filter types.ListFilter) ([]*domain.ProcessingError, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.ProcessingError, 0, len(r.items))
	for _, e := range r.items {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Operation != "" && e.Operation != filter.Operation {
			continue
		}
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) ListRetryable(_ context.Context, limit int, staleBefore time.Time) ([]*domain.ProcessingError, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.ProcessingError, 0)
	for _, e := range r.items {
		if e.RetryCount >= e.MaxRetries {
			continue
		}
		if e.Status == domain.StatusPending || e.RetryStale(staleBefore) {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) CountByStatus(_ context.Context) (map[domain.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[domain.Status]int{}
	for _, e := range r.items {
		counts[e.Status]++
	}
	return counts, nil
}
