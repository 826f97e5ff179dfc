package mapper

import (
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

// RetryRequest is the body of POST /processing-errors/:id/retry.
type RetryRequest struct {
	Actor string `json:"actor"`
}

// SkipRequest is the body of POST /processing-errors/:id/skip.
type SkipRequest struct {
	Actor string `json:"actor"`
	Note  string `json:"note,omitempty"`
}

// ProcessingError is the transport shape of a tracked error.
type ProcessingError struct {
	ID             int64      `json:"id"`
	OrderID        int64      `json:"orderId"`
	Operation      string     `json:"operation"`
	Status         string     `json:"status"`
	Message        string     `json:"message,omitempty"`
	RetryCount     int        `json:"retryCount"`
	MaxRetries     int        `json:"maxRetries"`
	LastRetryAt    *time.Time `json:"lastRetryAt,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy     string     `json:"resolvedBy,omitempty"`
	ResolutionNote string     `json:"resolutionNote,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Stats is the transport shape of per-status counts.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func ToRetryInput(id int64, req RetryRequest) types.RetryInput {
	return types.RetryInput{ID: id, Actor: req.Actor}
}

func ToSkipInput(id int64, req SkipRequest) types.SkipInput {
	return types.SkipInput{ID: id, Actor: req.Actor, Note: req.Note}
}

func ToListFilter(status, operation string) types.ListFilter {
	return types.ListFilter{Status: domain.Status(status), Operation: domain.Operation(operation)}
}

func FromDomain(e *domain.ProcessingError) ProcessingError {
	return ProcessingError{
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
	}
}

func FromDomainList(items []*domain.ProcessingError) []ProcessingError {
	out := make([]ProcessingError, 0, len(items))
	for _, e := range items {
		if e != nil {
			out = append(out, FromDomain(e))
		}
	}
	return out
}

func FromStats(stats *types.Stats) Stats {
	out := Stats{ByStatus: map[string]int{}}
	if stats == nil {
		return out
	}
	out.Total = stats.Total
	for status, n := range stats.ByStatus {
		out.ByStatus[string(status)] = n
	}
	return out
}
