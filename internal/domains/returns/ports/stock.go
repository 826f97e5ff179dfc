package ports

import "context"

// ReversalResult reports whether stock for the order had been credited back before.
type ReversalResult struct {
	AlreadyProcessed bool
}

// StockReversal credits the returned order's quantities back to inventory.
type StockReversal interface {
	Reverse(ctx context.Context, orderID int64, reference string) (ReversalResult, error)
}
