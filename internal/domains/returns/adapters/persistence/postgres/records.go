package postgres

import (
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
)

type returnLinkRecord struct {
	ID                   int64      `gorm:"primaryKey;autoIncrement"`
	ReturnShipmentNumber string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	OrderID              int64      `gorm:"not null;index"`
	LinkedBy             string     `gorm:"type:varchar(255);not null"`
	LinkedAt             time.Time  `gorm:"type:timestamptz;not null"`
	StockReversed        bool       `gorm:"not null;default:false"`
	ReversedAt           *time.Time `gorm:"type:timestamptz"`
}

func (returnLinkRecord) TableName() string { return "return_links" }

// stockReversalRecord marks an order whose stock was credited back; the primary key makes it once-only.
type stockReversalRecord struct {
	OrderID    int64     `gorm:"primaryKey;autoIncrement:false"`
	Reference  string    `gorm:"type:varchar(64)"`
	ReversedAt time.Time `gorm:"autoCreateTime"`
}

func (stockReversalRecord) TableName() string { return "stock_reversals" }

func toRecord(l *domain.ReturnLink) returnLinkRecord {
	return returnLinkRecord{
		ID:                   l.ID,
		ReturnShipmentNumber: l.ReturnShipmentNumber,
		OrderID:              l.OrderID,
		LinkedBy:             l.LinkedBy,
		LinkedAt:             l.LinkedAt,
		StockReversed:        l.StockReversed,
		ReversedAt:           l.ReversedAt,
	}
}

func (r returnLinkRecord) toDomain() *domain.ReturnLink {
	return &domain.ReturnLink{
		ID:                   r.ID,
		ReturnShipmentNumber: r.ReturnShipmentNumber,
		OrderID:              r.OrderID,
		LinkedBy:             r.LinkedBy,
		LinkedAt:             r.LinkedAt,
		StockReversed:        r.StockReversed,
		ReversedAt:           r.ReversedAt,
	}
}
