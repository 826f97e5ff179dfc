package types

import "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"

type LinkInput struct {
	ReturnShipmentNumber string
	OrderID              int64
	Actor                string
}

type ShipmentIdentifier struct {
	ReturnShipmentNumber string
}

// LinkResult describes what a link call changed.
type LinkResult struct {
	Link *domain.ReturnLink
	// Created is false when the same pair was linked before.
	Created bool
	// AlreadyProcessed is true when stock had been reversed before this call.
	AlreadyProcessed bool
}
