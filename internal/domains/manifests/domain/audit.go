package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions written by the fiscal flows.
const (
	ActionInvoiceCancelledViaManifest = "invoice.cancelled_via_manifest"
	ActionInvoicePaidViaManifest      = "invoice.paid_via_manifest"
)

// EntityTypeInvoice names invoices in audit entries.
const EntityTypeInvoice = "invoice"

// AuditEntry is an append-only record of a financial mutation.
type AuditEntry struct {
	ID         uuid.UUID
	Actor      string
	Action     string
	EntityType string
	EntityID   int64
	Metadata   AuditMetadata
	CreatedAt  time.Time
}

// AuditMetadata ties the mutation back to its manifest and shipment.
type AuditMetadata struct {
	ManifestID     int64  `json:"manifestId"`
	ShipmentNumber string `json:"shipmentNumber"`
	InvoiceNumber  string `json:"invoiceNumber"`
	InvoiceSeries  string `json:"invoiceSeries"`
	Source         string `json:"source"`
}

// NewInvoiceAuditEntry builds an audit entry for an invoice mutation.
func NewInvoiceAuditEntry(actor, action string, inv *Invoice, meta AuditMetadata, at time.Time) AuditEntry {
	entry := AuditEntry{
		ID:         uuid.New(),
		Actor:      actor,
		Action:     action,
		EntityType: EntityTypeInvoice,
		Metadata:   meta,
		CreatedAt:  at,
	}
	if inv != nil {
		entry.EntityID = inv.ID
		entry.Metadata.InvoiceNumber = inv.Number
		entry.Metadata.InvoiceSeries = inv.Series
	}
	return entry
}
