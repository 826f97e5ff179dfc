package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists processing errors in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, e *domain.ProcessingError) (*domain.ProcessingError, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.New("processing error is nil")
	}
	record := toRecord(e)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.ProcessingError, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record processingErrorRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update is a compare-and-set on status so two retries of one error cannot both run.
func (r *Repository) Update(ctx context.Context, e *domain.ProcessingError, from domain.Status) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if e == nil {
		return errors.New("processing error is nil")
	}
	record := toRecord(e)
	result := r.db.WithContext(ctx).Model(&processingErrorRecord{}).
		Where("id = ? AND status = ?", e.ID, string(from)).
		Select("status", "message", "retry_count", "last_retry_at", "resolved_at",
			"resolved_by", "resolution_note", "updated_at").
		Updates(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, e.ID)
	}
	return nil
}

// Reclaim takes over an abandoned retry; the updated_at guard lets only one caller win.
func (r *Repository) Reclaim(ctx context.Context, e *domain.ProcessingError, staleBefore time.Time) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if e == nil {
		return errors.New("processing error is nil")
	}
	record := toRecord(e)
	result := r.db.WithContext(ctx).Model(&processingErrorRecord{}).
		Where("id = ? AND status = ? AND updated_at < ?", e.ID, string(domain.StatusRetrying), staleBefore).
		Select("status", "message", "retry_count", "last_retry_at", "resolved_at",
			"resolved_by", "resolution_note", "updated_at").
		Updates(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, e.ID)
	}
	return nil
}

func (r *Repository) missingOrStale(ctx context.Context, id int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&processingErrorRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return ports.ErrStaleStatus
}

func (r *Repository) List(ctx context.Context, filter types.ListFilter) ([]*domain.ProcessingError, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&processingErrorRecord{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Operation != "" {
		query = query.Where("operation = ?", string(filter.Operation))
	}
	var records []processingErrorRecord
	if err := query.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) ListRetryable(ctx context.Context, limit int, staleBefore time.Time) ([]*domain.ProcessingError, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).
		Where("retry_count < max_retries").
		Where("status = ? OR (status = ? AND updated_at < ?)",
			string(domain.StatusPending), string(domain.StatusRetrying), staleBefore).
		Order("created_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []processingErrorRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []struct {
		Status string
		Total  int
	}
	if err := r.db.WithContext(ctx).Model(&processingErrorRecord{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[domain.Status]int, len(rows))
	for _, row := range rows {
		counts[domain.Status(row.Status)] = row.Total
	}
	return counts, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres processing error repository not configured")
	}
	return nil
}

func toDomainList(records []processingErrorRecord) []*domain.ProcessingError {
	out := make([]*domain.ProcessingError, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out
}
