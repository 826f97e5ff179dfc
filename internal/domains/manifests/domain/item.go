package domain

import "time"

// ItemStatus represents the processing outcome of a single manifest entry.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusProcessed ItemStatus = "processed"
	ItemStatusError     ItemStatus = "error"
)

// ManifestItem is one shipment entry owned by a manifest.
type ManifestItem struct {
	ID             int64
	ManifestID     int64
	ShipmentNumber string
	InvoiceID      *int64
	Status         ItemStatus
	ErrorMessage   string
	Note           string
	ProcessedAt    *time.Time
	// Invoice is hydrated by repositories when loading a manifest for processing.
	Invoice *Invoice
}

// IsValid reports whether the item status is known.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusProcessed, ItemStatusError:
		return true
	default:
		return false
	}
}

// HasInvoice reports whether the item links an invoice.
func (i ManifestItem) HasInvoice() bool {
	return i.InvoiceID != nil && i.Invoice != nil
}

// MarkProcessed records a successful or no-op outcome.
func (i *ManifestItem) MarkProcessed(note string, at time.Time) {
	i.Status = ItemStatusProcessed
	i.ErrorMessage = ""
	i.Note = note
	processedAt := at
	i.ProcessedAt = &processedAt
}

// MarkError records a failed outcome.
func (i *ManifestItem) MarkError(message string, at time.Time) {
	i.Status = ItemStatusError
	i.ErrorMessage = message
	i.Note = ""
	processedAt := at
	i.ProcessedAt = &processedAt
}

// Clone copies the item including its hydrated invoice.
func (i ManifestItem) Clone() ManifestItem {
	clone := i
	if i.InvoiceID != nil {
		id := *i.InvoiceID
		clone.InvoiceID = &id
	}
	clone.ProcessedAt = cloneTime(i.ProcessedAt)
	clone.Invoice = i.Invoice.Clone()
	return clone
}
