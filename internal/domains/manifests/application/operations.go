package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

// DefaultCollectionType is the collection kind reported for cash-on-delivery settlements.
const DefaultCollectionType = "Ramburs"

// Settlement carries what the provider returned for a successful call.
type Settlement struct {
	References []domain.DocumentRef
}

// ItemOperation is the single provider call a flow performs per manifest item.
type ItemOperation interface {
	Name() string
	Kind() domain.Kind
	AuditAction() string
	Source() string
	// AlreadyDone reports whether the invoice is terminal in the direction of this flow.
	AlreadyDone(inv *domain.Invoice) bool
	NoopNote() string
	// Execute performs exactly one provider call.
	Execute(ctx context.Context, manifest *domain.Manifest, inv *domain.Invoice) (Settlement, error)
	// Settle applies a successful provider outcome to the invoice.
	Settle(inv *domain.Invoice, manifest *domain.Manifest, settlement Settlement, at time.Time) error
}

// StornareOperation cancels the invoices of a return manifest.
type StornareOperation struct {
	provider ports.InvoicingProvider
}

// NewStornareOperation wires the provider used to cancel invoices.
func NewStornareOperation(provider ports.InvoicingProvider) *StornareOperation {
	return &StornareOperation{provider: provider}
}

func (o *StornareOperation) Name() string        { return "stornare" }
func (o *StornareOperation) Kind() domain.Kind   { return domain.KindReturn }
func (o *StornareOperation) AuditAction() string { return domain.ActionInvoiceCancelledViaManifest }
func (o *StornareOperation) Source() string      { return domain.SourceManifestReturn }
func (o *StornareOperation) NoopNote() string    { return "invoice already cancelled, nothing to do" }

func (o *StornareOperation) AlreadyDone(inv *domain.Invoice) bool {
	return inv.IsCancelled()
}

func (o *StornareOperation) Execute(ctx context.Context, _ *domain.Manifest, inv *domain.Invoice) (Settlement, error) {
	if o.provider == nil {
		return Settlement{}, fmt.Errorf("%w: provider not configured", ErrProvider)
	}
	res, err := o.provider.CancelInvoice(ctx, ports.CancelRequest{
		CompanyID: inv.CompanyID,
		Series:    inv.Series,
		Number:    inv.Number,
	})
	if err != nil {
		return Settlement{}, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	if res == nil || !res.Success {
		var msg string
		if res != nil {
			msg = res.Error
		}
		return Settlement{}, fmt.Errorf("%w: %s", ErrProvider, providerMessage(msg, "cancellation rejected"))
	}
	var refs []domain.DocumentRef
	ref := domain.DocumentRef{
		Series: strings.TrimSpace(res.CancelledInvoiceSeries),
		Number: strings.TrimSpace(res.CancelledInvoiceNumber),
	}
	if !ref.IsZero() {
		refs = append(refs, ref)
	}
	return Settlement{References: refs}, nil
}

func (o *StornareOperation) Settle(inv *domain.Invoice, manifest *domain.Manifest, settlement Settlement, at time.Time) error {
	return inv.Cancel(domain.Cancellation{
		Reason:     fmt.Sprintf("returned via manifest %s", manifestLabel(manifest)),
		Source:     o.Source(),
		References: settlement.References,
		ManifestID: manifest.ID,
		At:         at,
	})
}

// CollectionOperation marks the invoices of a delivery manifest as paid.
type CollectionOperation struct {
	provider       ports.InvoicingProvider
	collectionType string
}

// NewCollectionOperation wires the provider used to collect invoices.
func NewCollectionOperation(provider ports.InvoicingProvider, collectionType string) *CollectionOperation {
	if strings.TrimSpace(collectionType) == "" {
		collectionType = DefaultCollectionType
	}
	return &CollectionOperation{provider: provider, collectionType: collectionType}
}

func (o *CollectionOperation) Name() string        { return "collection" }
func (o *CollectionOperation) Kind() domain.Kind   { return domain.KindDelivery }
func (o *CollectionOperation) AuditAction() string { return domain.ActionInvoicePaidViaManifest }
func (o *CollectionOperation) Source() string      { return domain.SourceManifestDelivery }
func (o *CollectionOperation) NoopNote() string    { return "invoice already paid, nothing to do" }

func (o *CollectionOperation) AlreadyDone(inv *domain.Invoice) bool {
	return inv.IsPaid()
}

func (o *CollectionOperation) Execute(ctx context.Context, manifest *domain.Manifest, inv *domain.Invoice) (Settlement, error) {
	if o.provider == nil {
		return Settlement{}, fmt.Errorf("%w: provider not configured", ErrProvider)
	}
	res, err := o.provider.CollectInvoice(ctx, ports.CollectRequest{
		CompanyID:      inv.CompanyID,
		Series:         inv.Series,
		Number:         inv.Number,
		CollectionType: o.collectionType,
		CollectionDate: manifest.DocumentDate,
	})
	if err != nil {
		return Settlement{}, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	if res == nil || !res.Success {
		var msg string
		if res != nil {
			msg = res.Error
		}
		return Settlement{}, fmt.Errorf("%w: %s", ErrProvider, providerMessage(msg, "collection rejected"))
	}
	return Settlement{}, nil
}

func (o *CollectionOperation) Settle(inv *domain.Invoice, manifest *domain.Manifest, _ Settlement, at time.Time) error {
	return inv.MarkPaid(domain.Payment{
		Source:     o.Source(),
		ManifestID: manifest.ID,
		At:         at,
	})
}

func providerMessage(msg, fallback string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return fallback
}

func manifestLabel(m *domain.Manifest) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("#%d", m.ID)
}

// isAlreadyDone tells apart the domain guards that make a settle call a no-op.
func isAlreadyDone(err error) bool {
	return errors.Is(err, domain.ErrInvoiceCancelled) || errors.Is(err, domain.ErrInvoicePaid)
}

var (
	_ ItemOperation = (*StornareOperation)(nil)
	_ ItemOperation = (*CollectionOperation)(nil)
)
