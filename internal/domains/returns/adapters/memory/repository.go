package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
)

var _ ports.Repository = (*Repository)(nil)

type Repository struct {
	mu         sync.Mutex
	byShipment map[string]*domain.ReturnLink
	byID       map[int64]*domain.ReturnLink
	nextID     int64
}

func NewRepository() *Repository {
	return &Repository{
		byShipment: map[string]*domain.ReturnLink{},
		byID:       map[int64]*domain.ReturnLink{},
	}
}

func (r *Repository) Link(_ context.Context, link *domain.ReturnLink) (*domain.ReturnLink, bool, error) {
	if link == nil {
		return nil, false, errors.New("return link is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byShipment[link.ReturnShipmentNumber]; ok {
		return existing.Clone(), false, nil
	}
	clone := link.Clone()
	r.nextID++
	clone.ID = r.nextID
	r.byShipment[clone.ReturnShipmentNumber] = clone
	r.byID[clone.ID] = clone
	return clone.Clone(), true, nil
}

func (r *Repository) GetByShipment(_ context.Context, shipment string) (*domain.ReturnLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.byShipment[shipment]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return link.Clone(), nil
}

func (r *Repository) MarkReversed(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.byID[id]
	if !ok {
		return ports.ErrNotFound
	}
	link.MarkReversed(at)
	return nil
}
