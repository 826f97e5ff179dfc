package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory manifest persistence adapter. Each method holds the lock for
// its whole body, which gives ApplyItemOutcome the same all-or-nothing behaviour as a transaction.
type Repository struct {
	mu            sync.RWMutex
	manifests     map[int64]*domain.Manifest
	invoices      map[int64]*domain.Invoice
	audit         []domain.AuditEntry
	nextManifest  int64
	nextItem      int64
	nextInvoiceID int64
}

func NewRepository() *Repository {
	return &Repository{
		manifests: map[int64]*domain.Manifest{},
		invoices:  map[int64]*domain.Invoice{},
	}
}

func (r *Repository) SaveManifest(_ context.Context, manifest *domain.Manifest) (*domain.Manifest, error) {
	if manifest == nil {
		return nil, errors.New("manifest is nil")
	}
	if !manifest.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	clone := manifest.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextManifest++
		clone.ID = r.nextManifest
	} else if clone.ID > r.nextManifest {
		r.nextManifest = clone.ID
	}
	for i := range clone.Items {
		item := &clone.Items[i]
		if item.ID == 0 {
			r.nextItem++
			item.ID = r.nextItem
		} else if item.ID > r.nextItem {
			r.nextItem = item.ID
		}
		item.ManifestID = clone.ID
		if item.Status == "" {
			item.Status = domain.ItemStatusPending
		}
		item.Invoice = nil
	}
	r.manifests[clone.ID] = clone
	return r.hydrate(clone), nil
}

func (r *Repository) SaveInvoice(_ context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if invoice == nil {
		return nil, errors.New("invoice is nil")
	}
	clone := invoice.Clone()
	if clone.Status == "" {
		clone.Status = domain.InvoiceStatusActive
	}
	if clone.PaymentStatus == "" {
		clone.PaymentStatus = domain.PaymentStatusUnpaid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextInvoiceID++
		clone.ID = r.nextInvoiceID
	} else if clone.ID > r.nextInvoiceID {
		r.nextInvoiceID = clone.ID
	}
	r.invoices[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetManifest(_ context.Context, id int64) (*domain.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	manifest, ok := r.manifests[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.hydrate(manifest), nil
}

func (r *Repository) GetInvoice(_ context.Context, id int64) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, ports.ErrInvoiceNotFound
	}
	return invoice.Clone(), nil
}

func (r *Repository) UpdateLifecycle(_ context.Context, manifest *domain.Manifest) error {
	if manifest == nil {
		return errors.New("manifest is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.manifests[manifest.ID]
	if !ok {
		return ports.ErrNotFound
	}
	snapshot := manifest.Clone()
	stored.Status = snapshot.Status
	stored.ConfirmedBy = snapshot.ConfirmedBy
	stored.ConfirmedAt = snapshot.ConfirmedAt
	stored.ProcessedAt = snapshot.ProcessedAt
	return nil
}

func (r *Repository) ClaimForProcessing(_ context.Context, id int64, at, staleBefore time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.manifests[id]
	if !ok {
		return ports.ErrNotFound
	}
	switch {
	case stored.Status == domain.StatusConfirmed:
		return stored.BeginProcessing(at)
	case stored.ClaimStale(staleBefore):
		return stored.Reclaim(at, staleBefore)
	default:
		return ports.ErrClaimConflict
	}
}

func (r *Repository) ApplyItemOutcome(_ context.Context, outcome ports.ItemOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	manifest, ok := r.manifests[outcome.Item.ManifestID]
	if !ok {
		return ports.ErrNotFound
	}
	idx := -1
	for i := range manifest.Items {
		if manifest.Items[i].ID == outcome.Item.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("manifest %d has no item %d", manifest.ID, outcome.Item.ID)
	}
	if outcome.Invoice != nil {
		current, ok := r.invoices[outcome.Invoice.ID]
		if !ok {
			return ports.ErrInvoiceNotFound
		}
		if settledFor(current, outcome.Kind) {
			return ports.ErrInvoiceAlreadySettled
		}
		r.invoices[outcome.Invoice.ID] = outcome.Invoice.Clone()
	}
	item := outcome.Item.Clone()
	item.Invoice = nil
	manifest.Items[idx] = item
	if manifest.Status == domain.StatusProcessing && item.ProcessedAt != nil {
		manifest.ClaimedAt = cloneTime(item.ProcessedAt)
	}
	if outcome.Audit != nil {
		r.audit = append(r.audit, *outcome.Audit)
	}
	return nil
}

func (r *Repository) CompleteManifest(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.manifests[id]
	if !ok {
		return ports.ErrNotFound
	}
	return stored.Complete(at)
}

func (r *Repository) ListAudit(_ context.Context, manifestID int64) ([]domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []domain.AuditEntry
	for _, entry := range r.audit {
		if entry.Metadata.ManifestID == manifestID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func settledFor(inv *domain.Invoice, kind domain.Kind) bool {
	switch kind {
	case domain.KindReturn:
		return inv.IsCancelled()
	case domain.KindDelivery:
		return inv.IsPaid()
	default:
		return false
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	at := *t
	return &at
}

// hydrate must be called with the lock held.
func (r *Repository) hydrate(manifest *domain.Manifest) *domain.Manifest {
	clone := manifest.Clone()
	for i := range clone.Items {
		item := &clone.Items[i]
		item.Invoice = nil
		if item.InvoiceID == nil {
			continue
		}
		if invoice, ok := r.invoices[*item.InvoiceID]; ok {
			item.Invoice = invoice.Clone()
		}
	}
	return clone
}
