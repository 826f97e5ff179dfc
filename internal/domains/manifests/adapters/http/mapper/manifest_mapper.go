package mapper

import (
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
)

const documentDateLayout = "2006-01-02"

// ActorRequest carries the operator performing a lifecycle or processing action.
type ActorRequest struct {
	Actor string `json:"actor"`
}

// Manifest is the HTTP representation of a manifest with its items.
type Manifest struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	CompanyID    int64      `json:"companyId"`
	DocumentDate string     `json:"documentDate"`
	ConfirmedBy  string     `json:"confirmedBy,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmedAt,omitempty"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	Items        []Item     `json:"items"`
}

// Item is the HTTP representation of a manifest line.
type Item struct {
	ID             int64      `json:"id"`
	ShipmentNumber string     `json:"shipmentNumber"`
	InvoiceID      *int64     `json:"invoiceId,omitempty"`
	InvoiceNumber  string     `json:"invoiceNumber,omitempty"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	Note           string     `json:"note,omitempty"`
	ProcessedAt    *time.Time `json:"processedAt,omitempty"`
}

// AuditEntry is the HTTP representation of an audit log row.
type AuditEntry struct {
	ID         string               `json:"id"`
	Actor      string               `json:"actor"`
	Action     string               `json:"action"`
	EntityType string               `json:"entityType"`
	EntityID   int64                `json:"entityId"`
	Metadata   domain.AuditMetadata `json:"metadata"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// ToConfirmInput maps the request onto the confirm use case.
func ToConfirmInput(id int64, req ActorRequest) types.ConfirmManifestInput {
	return types.ConfirmManifestInput{ID: id, Actor: req.Actor}
}

// ToProcessInput maps the request onto the processing use case.
func ToProcessInput(id int64, req ActorRequest) types.ProcessManifestInput {
	return types.ProcessManifestInput{ManifestID: id, Actor: req.Actor}
}

// FromDomain converts the aggregate to its transport shape.
func FromDomain(m *domain.Manifest) Manifest {
	if m == nil {
		return Manifest{Items: []Item{}}
	}
	out := Manifest{
		ID:           m.ID,
		Name:         m.Name,
		Kind:         string(m.Kind),
		Status:       string(m.Status),
		CompanyID:    m.CompanyID,
		DocumentDate: m.DocumentDate.Format(documentDateLayout),
		ConfirmedBy:  m.ConfirmedBy,
		ConfirmedAt:  m.ConfirmedAt,
		ProcessedAt:  m.ProcessedAt,
		Items:        make([]Item, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		out.Items = append(out.Items, Item{
			ID:             item.ID,
			ShipmentNumber: item.ShipmentNumber,
			InvoiceID:      item.InvoiceID,
			InvoiceNumber:  item.Invoice.DisplayNumber(),
			Status:         string(item.Status),
			ErrorMessage:   item.ErrorMessage,
			Note:           item.Note,
			ProcessedAt:    item.ProcessedAt,
		})
	}
	return out
}

// FromAuditEntries converts audit rows to their transport shape.
func FromAuditEntries(entries []domain.AuditEntry) []AuditEntry {
	out := make([]AuditEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntry{
			ID:         e.ID.String(),
			Actor:      e.Actor,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
