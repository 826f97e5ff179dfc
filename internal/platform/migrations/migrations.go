package migrations

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&manifestRecord{},
		&manifestItemRecord{},
		&invoiceRecord{},
		&auditRecord{},
		&processingErrorRecord{},
		&returnLinkRecord{},
		&stockReversalRecord{},
	)
}

// Manifest schema mirrors the manifests Postgres adapter.
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

type manifestItemRecord struct {
	ID             int64      `gorm:"primaryKey;column:id;autoIncrement"`
	ManifestID     int64      `gorm:"column:manifest_id;index"`
	ShipmentNumber string     `gorm:"column:shipment_number;index"`
	InvoiceID      *int64     `gorm:"column:invoice_id;index"`
	Status         string     `gorm:"column:status;type:varchar(16)"`
	ErrorMessage   string     `gorm:"column:error_message"`
	Note           string     `gorm:"column:note"`
	ProcessedAt    *time.Time `gorm:"column:processed_at"`
}

func (manifestItemRecord) TableName() string { return "manifest_items" }

// Invoice schema is shared with the billing subsystem; only the settlement columns are written here.
type invoiceRecord struct {
	ID                  int64           `gorm:"primaryKey;column:id;autoIncrement"`
	OrderID             int64           `gorm:"column:order_id;index"`
	CompanyID           int64           `gorm:"column:company_id"`
	Series              string          `gorm:"column:series"`
	Number              string          `gorm:"column:number"`
	Status              string          `gorm:"column:status;type:varchar(16)"`
	PaymentStatus       string          `gorm:"column:payment_status;type:varchar(16)"`
	OrderTotal          decimal.Decimal `gorm:"column:order_total;type:numeric(14,2)"`
	PaidAmount          decimal.Decimal `gorm:"column:paid_amount;type:numeric(14,2)"`
	PaidAt              *time.Time      `gorm:"column:paid_at"`
	PaymentSource       string          `gorm:"column:payment_source"`
	CancelledAt         *time.Time      `gorm:"column:cancelled_at"`
	CancellationReason  string          `gorm:"column:cancellation_reason"`
	CancellationSource  string          `gorm:"column:cancellation_source"`
	CancellationSeries  pq.StringArray  `gorm:"column:cancellation_series;type:text[]"`
	CancellationNumbers pq.StringArray  `gorm:"column:cancellation_numbers;type:text[]"`
	SettledByManifestID *int64          `gorm:"column:settled_by_manifest_id;index"`
	CreatedAt           time.Time       `gorm:"column:created_at"`
	UpdatedAt           time.Time       `gorm:"column:updated_at"`
}

func (invoiceRecord) TableName() string { return "invoices" }

// Audit rows are append-only.
type auditRecord struct {
	ID         uuid.UUID      `gorm:"primaryKey;column:id;type:uuid"`
	Actor      string         `gorm:"column:actor"`
	Action     string         `gorm:"column:action;index"`
	EntityType string         `gorm:"column:entity_type"`
	EntityID   int64          `gorm:"column:entity_id;index"`
	ManifestID int64          `gorm:"column:manifest_id;index"`
	Metadata   map[string]any `gorm:"column:metadata;serializer:json;type:jsonb"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
}

func (auditRecord) TableName() string { return "audit_log" }

// Processing error schema mirrors the processingerrors Postgres adapter.
type processingErrorRecord struct {
	ID             int64      `gorm:"primaryKey;column:id;autoIncrement"`
	OrderID        int64      `gorm:"column:order_id;not null;index"`
	Operation      string     `gorm:"column:operation;type:varchar(32);not null;index:idx_processing_errors_status_operation,priority:2"`
	Status         string     `gorm:"column:status;type:varchar(32);not null;index:idx_processing_errors_status_operation,priority:1"`
	Message        string     `gorm:"column:message;type:text"`
	RetryCount     int        `gorm:"column:retry_count;not null;default:0"`
	MaxRetries     int        `gorm:"column:max_retries;not null"`
	LastRetryAt    *time.Time `gorm:"column:last_retry_at;type:timestamptz"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at;type:timestamptz"`
	ResolvedBy     string     `gorm:"column:resolved_by;type:varchar(255)"`
	ResolutionNote string     `gorm:"column:resolution_note;type:text"`
	CreatedAt      time.Time  `gorm:"column:created_at;index"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (processingErrorRecord) TableName() string { return "processing_errors" }

// Return link schema mirrors the returns Postgres adapter.
type returnLinkRecord struct {
	ID                   int64      `gorm:"primaryKey;column:id;autoIncrement"`
	ReturnShipmentNumber string     `gorm:"column:return_shipment_number;type:varchar(64);not null;uniqueIndex"`
	OrderID              int64      `gorm:"column:order_id;not null;index"`
	LinkedBy             string     `gorm:"column:linked_by;type:varchar(255);not null"`
	LinkedAt             time.Time  `gorm:"column:linked_at;type:timestamptz;not null"`
	StockReversed        bool       `gorm:"column:stock_reversed;not null;default:false"`
	ReversedAt           *time.Time `gorm:"column:reversed_at;type:timestamptz"`
}

func (returnLinkRecord) TableName() string { return "return_links" }

type stockReversalRecord struct {
	OrderID    int64     `gorm:"primaryKey;column:order_id;autoIncrement:false"`
	Reference  string    `gorm:"column:reference;type:varchar(64)"`
	ReversedAt time.Time `gorm:"column:reversed_at"`
}

func (stockReversalRecord) TableName() string { return "stock_reversals" }
