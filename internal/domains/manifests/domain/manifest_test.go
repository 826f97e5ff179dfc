package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewManifestValidatesInput(t *testing.T) {
	day := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)

	_, err := NewManifest(0, "MF", Kind("pickup"), 1, day)
	require.ErrorIs(t, err, ErrInvalidKind)

	_, err = NewManifest(0, "MF", KindReturn, 1, time.Time{})
	require.ErrorIs(t, err, ErrMissingDocumentDay)

	m, err := NewManifest(0, "  MF-7 ", KindDelivery, 1, day)
	require.NoError(t, err)
	require.Equal(t, "MF-7", m.Name)
	require.Equal(t, StatusDraft, m.Status)
}

func TestManifestLifecycle(t *testing.T) {
	m, err := NewManifest(1, "MF", KindReturn, 1, time.Now())
	require.NoError(t, err)

	require.ErrorIs(t, m.EnsureProcessable(KindReturn, time.Time{}), ErrNotConfirmed)
	require.ErrorIs(t, m.BeginProcessing(time.Now()), ErrInvalidTransition)

	require.NoError(t, m.RequestVerification())
	require.ErrorIs(t, m.RequestVerification(), ErrInvalidTransition)
	require.ErrorIs(t, m.Confirm(" ", time.Now()), ErrEmptyActor)

	at := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	require.NoError(t, m.Confirm("ana", at))
	require.Equal(t, "ana", m.ConfirmedBy)
	require.True(t, m.ConfirmedAt.Equal(at))

	require.ErrorIs(t, m.EnsureProcessable(KindDelivery, at), ErrKindMismatch)
	require.NoError(t, m.EnsureProcessable(KindReturn, at))

	require.NoError(t, m.BeginProcessing(at))
	require.True(t, m.ClaimedAt.Equal(at))
	require.ErrorIs(t, m.EnsureProcessable(KindReturn, at), ErrRunInProgress)
	require.NoError(t, m.Complete(at))
	require.Equal(t, StatusProcessed, m.Status)
	require.NotNil(t, m.ProcessedAt)

	for _, next := range []Status{StatusDraft, StatusPendingVerification, StatusConfirmed, StatusProcessing, StatusProcessed} {
		require.False(t, m.Status.CanTransitionTo(next), "processed must stay terminal, got edge to %s", next)
	}
}

func TestDraftConfirmsDirectly(t *testing.T) {
	m, err := NewManifest(1, "MF", KindDelivery, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, m.Confirm("ana", time.Now()))
	require.Equal(t, StatusConfirmed, m.Status)
}

func TestInvalidStatusBlocksTransitions(t *testing.T) {
	m := &Manifest{Status: Status("archived")}
	require.ErrorIs(t, m.Confirm("ana", time.Now()), ErrInvalidStatus)
}

func TestManifestCloneIsDeep(t *testing.T) {
	invoiceID := int64(5)
	m := &Manifest{
		ID:     1,
		Status: StatusConfirmed,
		Items: []ManifestItem{{
			ID:        1,
			InvoiceID: &invoiceID,
			Invoice:   &Invoice{ID: invoiceID, CancellationRefs: []DocumentRef{{Series: "ST", Number: "1"}}},
		}},
	}
	clone := m.Clone()
	clone.Items[0].Invoice.CancellationRefs[0].Number = "changed"
	*clone.Items[0].InvoiceID = 9

	require.Equal(t, "1", m.Items[0].Invoice.CancellationRefs[0].Number)
	require.Equal(t, int64(5), *m.Items[0].InvoiceID)
}

func TestStaleClaimCanBeTakenOver(t *testing.T) {
	claimedAt := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	m := &Manifest{ID: 1, Kind: KindDelivery, Status: StatusConfirmed}
	require.ErrorIs(t, m.Reclaim(claimedAt, claimedAt), ErrInvalidTransition)
	require.NoError(t, m.BeginProcessing(claimedAt))

	fresh := claimedAt.Add(-time.Minute)
	require.False(t, m.ClaimStale(fresh))
	require.ErrorIs(t, m.Reclaim(claimedAt.Add(time.Second), fresh), ErrRunInProgress)

	staleBefore := claimedAt.Add(time.Minute)
	require.True(t, m.ClaimStale(staleBefore))
	require.NoError(t, m.EnsureProcessable(KindDelivery, staleBefore))
	require.ErrorIs(t, m.EnsureProcessable(KindReturn, staleBefore), ErrKindMismatch)

	takenAt := staleBefore.Add(time.Second)
	require.NoError(t, m.Reclaim(takenAt, staleBefore))
	require.True(t, m.ClaimedAt.Equal(takenAt))
	require.False(t, m.ClaimStale(staleBefore))

	m.ClaimedAt = nil
	require.True(t, m.ClaimStale(staleBefore))
}

func TestInvoiceSettlementIsOneShot(t *testing.T) {
	at := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	inv := &Invoice{Series: "FCT", Number: "12", OrderTotal: decimal.RequireFromString("42.10")}
	require.Equal(t, "FCT12", inv.DisplayNumber())

	require.NoError(t, inv.MarkPaid(Payment{Source: SourceManifestDelivery, ManifestID: 3, At: at}))
	require.True(t, inv.IsPaid())
	require.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("42.10")))
	require.Equal(t, int64(3), *inv.SettledByManifestID)
	require.ErrorIs(t, inv.MarkPaid(Payment{At: at.Add(time.Hour)}), ErrInvoicePaid)
	require.True(t, inv.PaidAt.Equal(at))

	require.NoError(t, inv.Cancel(Cancellation{Reason: "returned", Source: SourceManifestReturn, References: []DocumentRef{{Series: "ST", Number: "12"}}, ManifestID: 4, At: at}))
	require.True(t, inv.IsCancelled())
	require.Equal(t, []DocumentRef{{Series: "ST", Number: "12"}}, inv.CancellationRefs)
	require.Equal(t, "ST12", inv.CancellationRefs[0].String())
	require.ErrorIs(t, inv.Cancel(Cancellation{At: at}), ErrInvoiceCancelled)

	var missing *Invoice
	require.False(t, missing.IsPaid())
	require.False(t, missing.IsCancelled())
	require.Empty(t, missing.DisplayNumber())
}

func TestItemOutcomes(t *testing.T) {
	at := time.Now()
	item := ManifestItem{ShipmentNumber: "AWB"}
	require.False(t, item.HasInvoice())

	item.MarkError("boom", at)
	require.Equal(t, ItemStatusError, item.Status)
	require.Equal(t, "boom", item.ErrorMessage)

	item.MarkProcessed("noop", at)
	require.Equal(t, ItemStatusProcessed, item.Status)
	require.Empty(t, item.ErrorMessage)
	require.Equal(t, "noop", item.Note)
}

func TestInvoiceAuditEntry(t *testing.T) {
	at := time.Now()
	inv := &Invoice{ID: 77, Series: "FCT", Number: "1"}
	entry := NewInvoiceAuditEntry("ana", ActionInvoicePaidViaManifest, inv, AuditMetadata{ManifestID: 2, ShipmentNumber: "AWB"}, at)

	require.NotEqual(t, uuid.Nil, entry.ID)
	require.Equal(t, EntityTypeInvoice, entry.EntityType)
	require.Equal(t, int64(77), entry.EntityID)
	require.Equal(t, "FCT", entry.Metadata.InvoiceSeries)
	require.Equal(t, "1", entry.Metadata.InvoiceNumber)
}
