package domain

import (
	"errors"
	"strings"
	"time"
)

// Status represents the lifecycle state of a manifest.
type Status string

const (
	StatusDraft               Status = "draft"
	StatusPendingVerification Status = "pending_verification"
	StatusConfirmed           Status = "confirmed"
	StatusProcessing          Status = "processing"
	StatusProcessed           Status = "processed"
)

// Kind selects which fiscal flow settles the manifest.
type Kind string

const (
	// KindReturn manifests group returned shipments whose invoices get cancelled.
	KindReturn Kind = "return"
	// KindDelivery manifests group delivered shipments whose invoices get marked paid.
	KindDelivery Kind = "delivery"
)

var (
	ErrEmptyActor         = errors.New("actor is required")
	ErrInvalidStatus      = errors.New("manifest status is invalid")
	ErrInvalidKind        = errors.New("manifest kind is invalid")
	ErrInvalidTransition  = errors.New("manifest status transition not allowed")
	ErrNotConfirmed       = errors.New("manifest is not confirmed")
	ErrKindMismatch       = errors.New("manifest kind does not match the requested flow")
	ErrMissingDocumentDay = errors.New("manifest document date is required")
	// ErrRunInProgress is returned while another run holds a fresh claim on the manifest.
	ErrRunInProgress = errors.New("manifest is already being processed")
)

// Manifest is a named batch of shipment references settled by one fiscal operation.
type Manifest struct {
	ID           int64
	Name         string
	Kind         Kind
	Status       Status
	CompanyID    int64
	DocumentDate time.Time
	ConfirmedBy  string
	ConfirmedAt  *time.Time
	// ClaimedAt is refreshed by the run holding the manifest in processing.
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
	Items       []ManifestItem
}

// NewManifest builds a draft manifest.
func NewManifest(id int64, name string, kind Kind, companyID int64, documentDate time.Time) (*Manifest, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if documentDate.IsZero() {
		return nil, ErrMissingDocumentDay
	}
	return &Manifest{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Kind:         kind,
		Status:       StatusDraft,
		CompanyID:    companyID,
		DocumentDate: documentDate,
	}, nil
}

// IsValid reports whether the status is one of the known lifecycle values.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingVerification, StatusConfirmed, StatusProcessing, StatusProcessed:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces the forward-only lifecycle.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusPendingVerification || next == StatusConfirmed
	case StatusPendingVerification:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusProcessed
	case StatusProcessed:
		return false
	default:
		return false
	}
}

// IsValid reports whether the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindReturn, KindDelivery:
		return true
	default:
		return false
	}
}

// RequestVerification parks a draft manifest until someone double checks it.
func (m *Manifest) RequestVerification() error {
	return m.transition(StatusPendingVerification)
}

// Confirm records who approved the manifest for processing.
func (m *Manifest) Confirm(actor string, at time.Time) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrEmptyActor
	}
	if err := m.transition(StatusConfirmed); err != nil {
		return err
	}
	m.ConfirmedBy = actor
	confirmedAt := at
	m.ConfirmedAt = &confirmedAt
	return nil
}

// EnsureProcessable checks the entry guard of a processing run. A manifest left in
// processing by a run that stopped heartbeating before staleBefore may be taken over.
func (m *Manifest) EnsureProcessable(kind Kind, staleBefore time.Time) error {
	switch m.Status {
	case StatusConfirmed:
	case StatusProcessing:
		if !m.ClaimStale(staleBefore) {
			return ErrRunInProgress
		}
	default:
		return ErrNotConfirmed
	}
	if m.Kind != kind {
		return ErrKindMismatch
	}
	return nil
}

// ClaimStale reports whether a processing claim was last refreshed before staleBefore.
func (m *Manifest) ClaimStale(staleBefore time.Time) bool {
	if m.Status != StatusProcessing {
		return false
	}
	return m.ClaimedAt == nil || m.ClaimedAt.Before(staleBefore)
}

// BeginProcessing claims a confirmed manifest for a processing run.
func (m *Manifest) BeginProcessing(at time.Time) error {
	if err := m.transition(StatusProcessing); err != nil {
		return err
	}
	m.ClaimedAt = &at
	return nil
}

// Reclaim takes over a processing manifest whose claim went stale.
func (m *Manifest) Reclaim(at, staleBefore time.Time) error {
	if m.Status != StatusProcessing {
		return ErrInvalidTransition
	}
	if !m.ClaimStale(staleBefore) {
		return ErrRunInProgress
	}
	m.ClaimedAt = &at
	return nil
}

// Complete stamps the end of a processing run regardless of item outcomes.
func (m *Manifest) Complete(at time.Time) error {
	if err := m.transition(StatusProcessed); err != nil {
		return err
	}
	processedAt := at
	m.ProcessedAt = &processedAt
	return nil
}

func (m *Manifest) transition(next Status) error {
	if !m.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !m.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	m.Status = next
	return nil
}

// Clone returns a deep copy so adapters never share item slices.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	clone := *m
	clone.ConfirmedAt = cloneTime(m.ConfirmedAt)
	clone.ClaimedAt = cloneTime(m.ClaimedAt)
	clone.ProcessedAt = cloneTime(m.ProcessedAt)
	if len(m.Items) > 0 {
		clone.Items = make([]ManifestItem, len(m.Items))
		for i := range m.Items {
			clone.Items[i] = m.Items[i].Clone()
		}
	}
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copy := *t
	return &copy
}
