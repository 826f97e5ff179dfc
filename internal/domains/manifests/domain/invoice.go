package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the fiscal validity flag of an invoice. Cancelled is terminal.
type InvoiceStatus string

const (
	InvoiceStatusActive    InvoiceStatus = "active"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// PaymentStatus is the settlement flag of an invoice. Paid is terminal.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Source tags distinguish batch driven mutations from manual ones in audit trails.
const (
	SourceManual           = "manual"
	SourceManifestReturn   = "manifest_return"
	SourceManifestDelivery = "manifest_delivery"
)

var (
	ErrInvoiceCancelled = errors.New("invoice already cancelled")
	ErrInvoicePaid      = errors.New("invoice already paid")
)

// Invoice is owned by the billing subsystem; this service only flips its terminal flags.
type Invoice struct {
	ID                 int64
	OrderID            int64
	CompanyID          int64
	Series             string
	Number             string
	Status             InvoiceStatus
	PaymentStatus      PaymentStatus
	OrderTotal         decimal.Decimal
	PaidAmount         decimal.Decimal
	PaidAt             *time.Time
	PaymentSource      string
	CancelledAt        *time.Time
	CancellationReason string
	CancellationSource string
	CancellationRefs   []DocumentRef
	// SettledByManifestID is a non-owning back-reference kept for audit lookups.
	SettledByManifestID *int64
}

// DocumentRef identifies a fiscal document issued by the invoicing provider.
type DocumentRef struct {
	Series string
	Number string
}

// String renders the reference the way operators read it.
func (r DocumentRef) String() string {
	return r.Series + r.Number
}

// IsZero reports whether the provider returned no document.
func (r DocumentRef) IsZero() bool {
	return r.Series == "" && r.Number == ""
}

// Cancellation carries the provider outcome applied to an invoice.
type Cancellation struct {
	Reason     string
	Source     string
	References []DocumentRef
	ManifestID int64
	At         time.Time
}

// Payment carries the settlement applied to an invoice.
type Payment struct {
	Source     string
	ManifestID int64
	At         time.Time
}

// IsValid reports whether the status is known.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusActive, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// IsValid reports whether the payment status is known.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether the terminal cancellation flag is set.
func (inv *Invoice) IsCancelled() bool {
	return inv != nil && inv.Status == InvoiceStatusCancelled
}

// IsPaid reports whether the terminal payment flag is set.
func (inv *Invoice) IsPaid() bool {
	return inv != nil && inv.PaymentStatus == PaymentStatusPaid
}

// DisplayNumber renders series and number the way operators read them.
func (inv *Invoice) DisplayNumber() string {
	if inv == nil {
		return ""
	}
	if inv.Series == "" {
		return inv.Number
	}
	return inv.Series + inv.Number
}

// Cancel flips the invoice to cancelled once.
func (inv *Invoice) Cancel(c Cancellation) error {
	if inv.IsCancelled() {
		return ErrInvoiceCancelled
	}
	inv.Status = InvoiceStatusCancelled
	at := c.At
	inv.CancelledAt = &at
	inv.CancellationReason = c.Reason
	inv.CancellationSource = c.Source
	inv.CancellationRefs = append([]DocumentRef{}, c.References...)
	manifestID := c.ManifestID
	inv.SettledByManifestID = &manifestID
	return nil
}

// MarkPaid settles the invoice for the full order total once.
func (inv *Invoice) MarkPaid(p Payment) error {
	if inv.IsPaid() {
		return ErrInvoicePaid
	}
	inv.PaymentStatus = PaymentStatusPaid
	inv.PaidAmount = inv.OrderTotal
	at := p.At
	inv.PaidAt = &at
	inv.PaymentSource = p.Source
	manifestID := p.ManifestID
	inv.SettledByManifestID = &manifestID
	return nil
}

// Clone returns a deep copy of the invoice.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	clone := *inv
	clone.PaidAt = cloneTime(inv.PaidAt)
	clone.CancelledAt = cloneTime(inv.CancelledAt)
	if inv.CancellationRefs != nil {
		clone.CancellationRefs = append([]DocumentRef{}, inv.CancellationRefs...)
	}
	if inv.SettledByManifestID != nil {
		id := *inv.SettledByManifestID
		clone.SettledByManifestID = &id
	}
	return &clone
}
