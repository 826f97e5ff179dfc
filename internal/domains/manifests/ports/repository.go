package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
)

var (
	ErrNotFound        = errors.New("manifest not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrClaimConflict is returned when the manifest left the confirmed state before the claim landed.
	ErrClaimConflict = errors.New("manifest is not claimable for processing")
	// ErrInvoiceAlreadySettled is returned when the invoice reached the terminal flag of the
	// outcome's flow before the commit landed.
	ErrInvoiceAlreadySettled = errors.New("invoice already settled")
)

// ItemOutcome is the unit committed in one local transaction: the item, its invoice and the audit entry.
// Kind selects the terminal flag guarding the invoice write.
type ItemOutcome struct {
	Kind    domain.Kind
	Item    domain.ManifestItem
	Invoice *domain.Invoice
	Audit   *domain.AuditEntry
}

// Repository persists manifests together with the invoices they settle.
type Repository interface {
	// SaveManifest upserts the manifest header and its items.
	SaveManifest(ctx context.Context, manifest *domain.Manifest) (*domain.Manifest, error)
	// SaveInvoice upserts an invoice; used by seeding and by the billing side.
	SaveInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)
	// GetManifest loads the manifest with its items and their linked invoices.
	GetManifest(ctx context.Context, id int64) (*domain.Manifest, error)
	GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error)
	// UpdateLifecycle persists status, confirmation and completion fields only.
	UpdateLifecycle(ctx context.Context, manifest *domain.Manifest) error
	// ClaimForProcessing atomically moves a confirmed manifest to processing, or takes over a
	// processing manifest whose claim was last refreshed before staleBefore.
	ClaimForProcessing(ctx context.Context, id int64, at, staleBefore time.Time) error
	// ApplyItemOutcome commits one item mutation atomically and refreshes the run's claim.
	// The invoice write fails with ErrInvoiceAlreadySettled if the invoice is already terminal.
	ApplyItemOutcome(ctx context.Context, outcome ItemOutcome) error
	// CompleteManifest moves a processing manifest to processed.
	CompleteManifest(ctx context.Context, id int64, at time.Time) error
	ListAudit(ctx context.Context, manifestID int64) ([]domain.AuditEntry, error)
}
