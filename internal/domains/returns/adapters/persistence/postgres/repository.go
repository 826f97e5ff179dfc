package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists return links in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Link relies on the unique shipment index so concurrent scans of one parcel keep a single link.
func (r *Repository) Link(ctx context.Context, link *domain.ReturnLink) (*domain.ReturnLink, bool, error) {
	if err := r.ensureDB(); err != nil {
		return nil, false, err
	}
	if link == nil {
		return nil, false, errors.New("return link is nil")
	}
	record := toRecord(link)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "return_shipment_number"}},
			DoNothing: true,
		}).
		Create(&record)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return record.toDomain(), true, nil
	}
	existing, err := r.GetByShipment(ctx, link.ReturnShipmentNumber)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *Repository) GetByShipment(ctx context.Context, shipment string) (*domain.ReturnLink, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record returnLinkRecord
	if err := r.db.WithContext(ctx).First(&record, "return_shipment_number = ?", shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) MarkReversed(ctx context.Context, id int64, at time.Time) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&returnLinkRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_reversed": true,
			"reversed_at":    gorm.Expr("COALESCE(reversed_at, ?)", at),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres return link repository not configured")
	}
	return nil
}
