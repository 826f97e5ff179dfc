package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyShipment = errors.New("return shipment number is required")
	ErrInvalidOrder  = errors.New("order id must be positive")
	ErrEmptyActor    = errors.New("actor is required")
)

// ReturnLink ties a scanned return shipment to the order it sends back.
type ReturnLink struct {
	ID                   int64
	ReturnShipmentNumber string
	OrderID              int64
	LinkedBy             string
	LinkedAt             time.Time
	StockReversed        bool
	ReversedAt           *time.Time
}

func NewReturnLink(shipment string, orderID int64, actor string, at time.Time) (*ReturnLink, error) {
	shipment = NormalizeShipment(shipment)
	if shipment == "" {
		return nil, ErrEmptyShipment
	}
	if orderID <= 0 {
		return nil, ErrInvalidOrder
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, ErrEmptyActor
	}
	return &ReturnLink{
		ReturnShipmentNumber: shipment,
		OrderID:              orderID,
		LinkedBy:             actor,
		LinkedAt:             at,
	}, nil
}

// NormalizeShipment makes scanner input comparable; AWB numbers are case-insensitive.
func NormalizeShipment(shipment string) string {
	return strings.ToUpper(strings.TrimSpace(shipment))
}

// MarkReversed records that stock for the order was credited back.
func (l *ReturnLink) MarkReversed(at time.Time) {
	if l.StockReversed {
		return
	}
	l.StockReversed = true
	l.ReversedAt = &at
}

func (l *ReturnLink) Clone() *ReturnLink {
	if l == nil {
		return nil
	}
	clone := *l
	if l.ReversedAt != nil {
		at := *l.ReversedAt
		clone.ReversedAt = &at
	}
	return &clone
}
