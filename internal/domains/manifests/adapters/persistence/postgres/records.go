package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
)

type manifestRecord struct {
	ID           int64      `gorm:"primaryKey;column:id;autoIncrement"`
	Name         string     `gorm:"column:name"`
	Kind         string     `gorm:"column:kind;type:varchar(16)"`
	Status       string     `gorm:"column:status;type:varchar(32);index"`
	CompanyID    int64      `gorm:"column:company_id;index"`
	DocumentDate time.Time  `gorm:"column:document_date;type:date"`
	ConfirmedBy  string     `gorm:"column:confirmed_by"`
	ConfirmedAt  *time.Time `gorm:"column:confirmed_at"`
	ClaimedAt    *time.Time `gorm:"column:claimed_at"`
	ProcessedAt  *time.Time `gorm:"column:processed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (manifestRecord) TableName() string { return "manifests" }

type itemRecord struct {
	ID             int64      `gorm:"primaryKey;column:id;autoIncrement"`
	ManifestID     int64      `gorm:"column:manifest_id;index"`
	ShipmentNumber string     `gorm:"column:shipment_number;index"`
	InvoiceID      *int64     `gorm:"column:invoice_id;index"`
	Status         string     `gorm:"column:status;type:varchar(16)"`
	ErrorMessage   string     `gorm:"column:error_message"`
	Note           string     `gorm:"column:note"`
	ProcessedAt    *time.Time `gorm:"column:processed_at"`
}

func (itemRecord) TableName() string { return "manifest_items" }

type invoiceRecord struct {
	ID                 int64           `gorm:"primaryKey;column:id;autoIncrement"`
	OrderID            int64           `gorm:"column:order_id;index"`
	CompanyID          int64           `gorm:"column:company_id"`
	Series             string          `gorm:"column:series"`
	Number             string          `gorm:"column:number"`
	Status             string          `gorm:"column:status;type:varchar(16)"`
	PaymentStatus      string          `gorm:"column:payment_status;type:varchar(16)"`
	OrderTotal         decimal.Decimal `gorm:"column:order_total;type:numeric(14,2)"`
	PaidAmount         decimal.Decimal `gorm:"column:paid_amount;type:numeric(14,2)"`
	PaidAt             *time.Time      `gorm:"column:paid_at"`
	PaymentSource      string          `gorm:"column:payment_source"`
	CancelledAt        *time.Time      `gorm:"column:cancelled_at"`
	CancellationReason string          `gorm:"column:cancellation_reason"`
	CancellationSource string          `gorm:"column:cancellation_source"`
	// Cancellation documents are stored as parallel series and number arrays.
	CancellationSeries  pq.StringArray `gorm:"column:cancellation_series;type:text[]"`
	CancellationNumbers pq.StringArray `gorm:"column:cancellation_numbers;type:text[]"`
	SettledByManifestID *int64         `gorm:"column:settled_by_manifest_id"`
	CreatedAt           time.Time      `gorm:"column:created_at"`
	UpdatedAt           time.Time      `gorm:"column:updated_at"`
}

func (invoiceRecord) TableName() string { return "invoices" }

type auditRecord struct {
	ID         uuid.UUID            `gorm:"primaryKey;column:id;type:uuid"`
	Actor      string               `gorm:"column:actor"`
	Action     string               `gorm:"column:action;index"`
	EntityType string               `gorm:"column:entity_type"`
	EntityID   int64                `gorm:"column:entity_id;index"`
	ManifestID int64                `gorm:"column:manifest_id;index"`
	Metadata   domain.AuditMetadata `gorm:"column:metadata;serializer:json;type:jsonb"`
	CreatedAt  time.Time            `gorm:"column:created_at"`
}

func (auditRecord) TableName() string { return "audit_log" }

func toManifestRecord(m *domain.Manifest) manifestRecord {
	return manifestRecord{
		ID:           m.ID,
		Name:         m.Name,
		Kind:         string(m.Kind),
		Status:       string(m.Status),
		CompanyID:    m.CompanyID,
		DocumentDate: m.DocumentDate,
		ConfirmedBy:  m.ConfirmedBy,
		ConfirmedAt:  m.ConfirmedAt,
		ClaimedAt:    m.ClaimedAt,
		ProcessedAt:  m.ProcessedAt,
	}
}

func (r manifestRecord) toDomain() *domain.Manifest {
	return &domain.Manifest{
		ID:           r.ID,
		Name:         r.Name,
		Kind:         domain.Kind(r.Kind),
		Status:       domain.Status(r.Status),
		CompanyID:    r.CompanyID,
		DocumentDate: r.DocumentDate,
		ConfirmedBy:  r.ConfirmedBy,
		ConfirmedAt:  r.ConfirmedAt,
		ClaimedAt:    r.ClaimedAt,
		ProcessedAt:  r.ProcessedAt,
	}
}

func toItemRecord(manifestID int64, item domain.ManifestItem) itemRecord {
	status := item.Status
	if status == "" {
		status = domain.ItemStatusPending
	}
	return itemRecord{
		ID:             item.ID,
		ManifestID:     manifestID,
		ShipmentNumber: item.ShipmentNumber,
		InvoiceID:      item.InvoiceID,
		Status:         string(status),
		ErrorMessage:   item.ErrorMessage,
		Note:           item.Note,
		ProcessedAt:    item.ProcessedAt,
	}
}

func (r itemRecord) toDomain() domain.ManifestItem {
	return domain.ManifestItem{
		ID:             r.ID,
		ManifestID:     r.ManifestID,
		ShipmentNumber: r.ShipmentNumber,
		InvoiceID:      r.InvoiceID,
		Status:         domain.ItemStatus(r.Status),
		ErrorMessage:   r.ErrorMessage,
		Note:           r.Note,
		ProcessedAt:    r.ProcessedAt,
	}
}

func toInvoiceRecord(inv *domain.Invoice) invoiceRecord {
	status := inv.Status
	if status == "" {
		status = domain.InvoiceStatusActive
	}
	payment := inv.PaymentStatus
	if payment == "" {
		payment = domain.PaymentStatusUnpaid
	}
	rec := invoiceRecord{
		ID:                  inv.ID,
		OrderID:             inv.OrderID,
		CompanyID:           inv.CompanyID,
		Series:              inv.Series,
		Number:              inv.Number,
		Status:              string(status),
		PaymentStatus:       string(payment),
		OrderTotal:          inv.OrderTotal,
		PaidAmount:          inv.PaidAmount,
		PaidAt:              inv.PaidAt,
		PaymentSource:       inv.PaymentSource,
		CancelledAt:         inv.CancelledAt,
		CancellationReason:  inv.CancellationReason,
		CancellationSource:  inv.CancellationSource,
		SettledByManifestID: inv.SettledByManifestID,
	}
	if len(inv.CancellationRefs) > 0 {
		rec.CancellationSeries = make(pq.StringArray, len(inv.CancellationRefs))
		rec.CancellationNumbers = make(pq.StringArray, len(inv.CancellationRefs))
		for i, ref := range inv.CancellationRefs {
			rec.CancellationSeries[i] = ref.Series
			rec.CancellationNumbers[i] = ref.Number
		}
	}
	return rec
}

func (r invoiceRecord) toDomain() *domain.Invoice {
	inv := &domain.Invoice{
		ID:                  r.ID,
		OrderID:             r.OrderID,
		CompanyID:           r.CompanyID,
		Series:              r.Series,
		Number:              r.Number,
		Status:              domain.InvoiceStatus(r.Status),
		PaymentStatus:       domain.PaymentStatus(r.PaymentStatus),
		OrderTotal:          r.OrderTotal,
		PaidAmount:          r.PaidAmount,
		PaidAt:              r.PaidAt,
		PaymentSource:       r.PaymentSource,
		CancelledAt:         r.CancelledAt,
		CancellationReason:  r.CancellationReason,
		CancellationSource:  r.CancellationSource,
		SettledByManifestID: r.SettledByManifestID,
	}
	for i, series := range r.CancellationSeries {
		ref := domain.DocumentRef{Series: series}
		if i < len(r.CancellationNumbers) {
			ref.Number = r.CancellationNumbers[i]
		}
		inv.CancellationRefs = append(inv.CancellationRefs, ref)
	}
	return inv
}

func toAuditRecord(entry domain.AuditEntry) auditRecord {
	return auditRecord{
		ID:         entry.ID,
		Actor:      entry.Actor,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		ManifestID: entry.Metadata.ManifestID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

func (r auditRecord) toDomain() domain.AuditEntry {
	return domain.AuditEntry{
		ID:         r.ID,
		Actor:      r.Actor,
		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Metadata:   r.Metadata,
		CreatedAt:  r.CreatedAt,
	}
}
