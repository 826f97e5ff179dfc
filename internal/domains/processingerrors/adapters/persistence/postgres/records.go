package postgres

import (
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

type processingErrorRecord struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	OrderID        int64      `gorm:"not null;index"`
	Operation      string     `gorm:"type:varchar(32);not null;index:idx_processing_errors_status_operation,priority:2"`
	Status         string     `gorm:"type:varchar(32);not null;index:idx_processing_errors_status_operation,priority:1"`
	Message        string     `gorm:"type:text"`
	RetryCount     int        `gorm:"not null;default:0"`
	MaxRetries     int        `gorm:"not null"`
	LastRetryAt    *time.Time `gorm:"type:timestamptz"`
	ResolvedAt     *time.Time `gorm:"type:timestamptz"`
	ResolvedBy     string     `gorm:"type:varchar(255)"`
	ResolutionNote string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (processingErrorRecord) TableName() string { return "processing_errors" }

func toRecord(e *domain.ProcessingError) processingErrorRecord {
	return processingErrorRecord{
		ID:             e.ID,
		OrderID:        e.OrderID,
		Operation:      string(e.Operation),
		Status:         string(e.Status),
		Message:        e.Message,
		RetryCount:     e.RetryCount,
		MaxRetries:     e.MaxRetries,
		LastRetryAt:    e.LastRetryAt,
		ResolvedAt:     e.ResolvedAt,
		ResolvedBy:     e.ResolvedBy,
		ResolutionNote: e.ResolutionNote,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (r processingErrorRecord) toDomain() *domain.ProcessingError {
	return &domain.ProcessingError{
		ID:             r.ID,
		OrderID:        r.OrderID,
		Operation:      domain.Operation(r.Operation),
		Status:         domain.Status(r.Status),
		Message:        r.Message,
		RetryCount:     r.RetryCount,
		MaxRetries:     r.MaxRetries,
		LastRetryAt:    r.LastRetryAt,
		ResolvedAt:     r.ResolvedAt,
		ResolvedBy:     r.ResolvedBy,
		ResolutionNote: r.ResolutionNote,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
