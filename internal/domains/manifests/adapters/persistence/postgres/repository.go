package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists manifests, invoices and the audit trail in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveManifest inserts or updates a manifest and its items.
func (r *Repository) SaveManifest(ctx context.Context, manifest *domain.Manifest) (*domain.Manifest, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, errors.New("manifest is nil")
	}
	if !manifest.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	record := toManifestRecord(manifest)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "kind", "status", "company_id", "document_date",
				"confirmed_by", "confirmed_at", "claimed_at", "processed_at", "updated_at",
			}),
		}).Create(&record).Error; err != nil {
			return err
		}
		for _, item := range manifest.Items {
			rec := toItemRecord(record.ID, item)
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"shipment_number", "invoice_id", "status", "error_message", "note", "processed_at",
				}),
			}).Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetManifest(ctx, record.ID)
}

// SaveInvoice inserts or updates an invoice.
func (r *Repository) SaveInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, errors.New("invoice is nil")
	}
	record := toInvoiceRecord(invoice)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetInvoice(ctx, record.ID)
}

// GetManifest loads a manifest with its items ordered by id and their invoices hydrated.
func (r *Repository) GetManifest(ctx context.Context, id int64) (*domain.Manifest, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	var record manifestRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []itemRecord
	if err := db.Where("manifest_id = ?", id).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	invoiceIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if item.InvoiceID != nil {
			invoiceIDs = append(invoiceIDs, *item.InvoiceID)
		}
	}
	invoices := map[int64]*domain.Invoice{}
	if len(invoiceIDs) > 0 {
		var invRecords []invoiceRecord
		if err := db.Where("id IN ?", invoiceIDs).Find(&invRecords).Error; err != nil {
			return nil, err
		}
		for i := range invRecords {
			invoices[invRecords[i].ID] = invRecords[i].toDomain()
		}
	}

	manifest := record.toDomain()
	manifest.Items = make([]domain.ManifestItem, 0, len(items))
	for _, rec := range items {
		item := rec.toDomain()
		if item.InvoiceID != nil {
			item.Invoice = invoices[*item.InvoiceID]
		}
		manifest.Items = append(manifest.Items, item)
	}
	return manifest, nil
}

// GetInvoice fetches an invoice by identifier.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record invoiceRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrInvoiceNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// UpdateLifecycle persists status and confirmation fields only.
func (r *Repository) UpdateLifecycle(ctx context.Context, manifest *domain.Manifest) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&manifestRecord{}).
		Where("id = ?", manifest.ID).
		Updates(map[string]any{
			"status":       string(manifest.Status),
			"confirmed_by": manifest.ConfirmedBy,
			"confirmed_at": manifest.ConfirmedAt,
			"processed_at": manifest.ProcessedAt,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ClaimForProcessing moves a confirmed manifest to processing with a conditional update,
// so only one run can win. A processing manifest whose claim went stale is taken over the same way.
func (r *Repository) ClaimForProcessing(ctx context.Context, id int64, at, staleBefore time.Time) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&manifestRecord{}).
		Where("id = ?", id).
		Where("status = ? OR (status = ? AND (claimed_at IS NULL OR claimed_at < ?))",
			string(domain.StatusConfirmed), string(domain.StatusProcessing), staleBefore).
		Updates(map[string]any{
			"status":     string(domain.StatusProcessing),
			"claimed_at": at,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOr(ctx, id, ports.ErrClaimConflict)
	}
	return nil
}

// ApplyItemOutcome commits the item status, the settled invoice and the audit entry together.
func (r *Repository) ApplyItemOutcome(ctx context.Context, outcome ports.ItemOutcome) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	item := toItemRecord(outcome.Item.ManifestID, outcome.Item)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&itemRecord{}).
			Where("id = ? AND manifest_id = ?", item.ID, item.ManifestID).
			Updates(map[string]any{
				"status":        item.Status,
				"error_message": item.ErrorMessage,
				"note":          item.Note,
				"processed_at":  item.ProcessedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("manifest %d has no item %d: %w", item.ManifestID, item.ID, ports.ErrNotFound)
		}
		if item.ProcessedAt != nil {
			if err := tx.Model(&manifestRecord{}).
				Where("id = ? AND status = ?", item.ManifestID, string(domain.StatusProcessing)).
				Update("claimed_at", *item.ProcessedAt).Error; err != nil {
				return err
			}
		}
		if outcome.Invoice != nil {
			inv := toInvoiceRecord(outcome.Invoice)
			query := tx.Model(&invoiceRecord{}).Where("id = ?", inv.ID)
			switch outcome.Kind {
			case domain.KindReturn:
				query = query.Where("status <> ?", string(domain.InvoiceStatusCancelled))
			case domain.KindDelivery:
				query = query.Where("payment_status <> ?", string(domain.PaymentStatusPaid))
			}
			result := query.
				Select("status", "payment_status", "paid_amount", "paid_at", "payment_source",
					"cancelled_at", "cancellation_reason", "cancellation_source",
					"cancellation_series", "cancellation_numbers",
					"settled_by_manifest_id", "updated_at").
				Updates(&inv)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return r.invoiceMissingOr(tx, inv.ID, ports.ErrInvoiceAlreadySettled)
			}
		}
		if outcome.Audit != nil {
			audit := toAuditRecord(*outcome.Audit)
			if err := tx.Create(&audit).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CompleteManifest stamps a processing manifest as processed.
func (r *Repository) CompleteManifest(ctx context.Context, id int64, at time.Time) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&manifestRecord{}).
		Where("id = ? AND status = ?", id, string(domain.StatusProcessing)).
		Updates(map[string]any{
			"status":       string(domain.StatusProcessed),
			"processed_at": at,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOr(ctx, id, domain.ErrInvalidTransition)
	}
	return nil
}

// ListAudit returns audit entries written for the manifest, oldest first.
func (r *Repository) ListAudit(ctx context.Context, manifestID int64) ([]domain.AuditEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []auditRecord
	if err := r.db.WithContext(ctx).
		Where("manifest_id = ?", manifestID).
		Order("created_at, entity_id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.AuditEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toDomain())
	}
	return entries, nil
}

func (r *Repository) missingOr(ctx context.Context, id int64, fallback error) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&manifestRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return fallback
}

func (r *Repository) invoiceMissingOr(tx *gorm.DB, id int64, fallback error) error {
	var count int64
	if err := tx.Model(&invoiceRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrInvoiceNotFound
	}
	return fallback
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres manifest repository not configured")
	}
	return nil
}
