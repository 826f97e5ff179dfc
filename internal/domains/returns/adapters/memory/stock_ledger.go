package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
)

var _ ports.StockReversal = (*StockLedger)(nil)

// StockLedger records which orders had their stock credited back.
type StockLedger struct {
	mu       sync.Mutex
	reversed map[int64]string
}

func NewStockLedger() *StockLedger {
	return &StockLedger{reversed: map[int64]string{}}
}

func (s *StockLedger) Reverse(_ context.Context, orderID int64, reference string) (ports.ReversalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reversed[orderID]; ok {
		return ports.ReversalResult{AlreadyProcessed: true}, nil
	}
	s.reversed[orderID] = reference
	return ports.ReversalResult{}, nil
}

// Reversals returns how many orders were credited back.
func (s *StockLedger) Reversals() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reversed)
}
