package mapper

import (
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/domain"
)

// LinkRequest is the body of POST /returns/links.
type LinkRequest struct {
	ReturnShipmentNumber string `json:"returnShipmentNumber"`
	OrderID              int64  `json:"orderId"`
	Actor                string `json:"actor"`
}

type ReturnLink struct {
	ID                   int64      `json:"id"`
	ReturnShipmentNumber string     `json:"returnShipmentNumber"`
	OrderID              int64      `json:"orderId"`
	LinkedBy             string     `json:"linkedBy"`
	LinkedAt             time.Time  `json:"linkedAt"`
	StockReversed        bool       `json:"stockReversed"`
	ReversedAt           *time.Time `json:"reversedAt,omitempty"`
}

type LinkResponse struct {
	Link             ReturnLink `json:"link"`
	Created          bool       `json:"created"`
	AlreadyProcessed bool       `json:"alreadyProcessed"`
}

func ToLinkInput(req LinkRequest) types.LinkInput {
	return types.LinkInput{
		ReturnShipmentNumber: req.ReturnShipmentNumber,
		OrderID:              req.OrderID,
		Actor:                req.Actor,
	}
}

func FromDomain(l *domain.ReturnLink) ReturnLink {
	return ReturnLink{
		ID:                   l.ID,
		ReturnShipmentNumber: l.ReturnShipmentNumber,
		OrderID:              l.OrderID,
		LinkedBy:             l.LinkedBy,
		LinkedAt:             l.LinkedAt,
		StockReversed:        l.StockReversed,
		ReversedAt:           l.ReversedAt,
	}
}

func FromResult(result *types.LinkResult) LinkResponse {
	return LinkResponse{
		Link:             FromDomain(result.Link),
		Created:          result.Created,
		AlreadyProcessed: result.AlreadyProcessed,
	}
}
