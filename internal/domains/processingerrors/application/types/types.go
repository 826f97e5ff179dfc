package types

import "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"

// RecordInput is emitted by the order pipeline when invoice or label generation fails.
type RecordInput struct {
	OrderID    int64
	Operation  domain.Operation
	Message    string
	MaxRetries int
}

type ErrorIdentifier struct {
	ID int64
}

type RetryInput struct {
	ID    int64
	Actor string
}

type SkipInput struct {
	ID    int64
	Actor string
	Note  string
}

// ListFilter narrows listings; zero values match everything.
type ListFilter struct {
	Status    domain.Status
	Operation domain.Operation
}

type SweepInput struct {
	Limit int
}

// SweepResult aggregates one automatic reprocessing pass.
type SweepResult struct {
	Attempted int
	Resolved  int
	Pending   int
	Failed    int
	// Skipped counts errors that changed state before the sweep reached them.
	Skipped int
}

// Stats counts errors per status.
type Stats struct {
	ByStatus map[domain.Status]int
	Total    int
}
