package types

// ItemError describes one item that did not settle during a run.
type ItemError struct {
	ItemID         int64  `json:"itemId"`
	ShipmentNumber string `json:"shipmentNumber"`
	InvoiceNumber  string `json:"invoiceNumber"`
	Error          string `json:"error"`
}

// BatchResult aggregates the outcome of one processing run.
type BatchResult struct {
	Success        bool        `json:"success"`
	TotalProcessed int         `json:"totalProcessed"`
	SuccessCount   int         `json:"successCount"`
	ErrorCount     int         `json:"errorCount"`
	SkippedCount   int         `json:"skippedCount"`
	Errors         []ItemError `json:"errors"`
}

// NewRejectedResult builds the result of a run refused before touching any item.
func NewRejectedResult(message string) *BatchResult {
	return &BatchResult{
		Errors: []ItemError{{Error: message}},
	}
}
