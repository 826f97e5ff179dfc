package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
)

var _ ports.StockReversal = (*StockReversals)(nil)

// StockReversals guards the inventory credit with a once-per-order marker row. The
// quantity movements themselves belong to the inventory service reading this table.
type StockReversals struct {
	db *gorm.DB
}

func NewStockReversals(db *gorm.DB) *StockReversals {
	return &StockReversals{db: db}
}

func (s *StockReversals) Reverse(ctx context.Context, orderID int64, reference string) (ports.ReversalResult, error) {
	if s == nil || s.db == nil {
		return ports.ReversalResult{}, errors.New("postgres stock reversals not configured")
	}
	record := stockReversalRecord{OrderID: orderID, Reference: reference}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return ports.ReversalResult{}, result.Error
	}
	return ports.ReversalResult{AlreadyProcessed: result.RowsAffected == 0}, nil
}
