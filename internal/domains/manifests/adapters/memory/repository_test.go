package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

func seed(t *testing.T, repo *Repository) *domain.Manifest {
	t.Helper()
	ctx := context.Background()
	inv, err := repo.SaveInvoice(ctx, &domain.Invoice{CompanyID: 1, Series: "FCT", Number: "7", OrderTotal: decimal.RequireFromString("12")})
	require.NoError(t, err)
	m, err := domain.NewManifest(0, "MF", domain.KindReturn, 1, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	id := inv.ID
	m.Items = []domain.ManifestItem{{ShipmentNumber: "AWB1", InvoiceID: &id}, {ShipmentNumber: "AWB2", InvoiceID: &id}}
	require.NoError(t, m.Confirm("ana", time.Now()))
	saved, err := repo.SaveManifest(ctx, m)
	require.NoError(t, err)
	return saved
}

func TestApplyItemOutcome_RefusesSecondSettlement(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	m := seed(t, repo)
	at := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

	for i, item := range m.Items {
		settled := item.Invoice.Clone()
		require.NoError(t, settled.Cancel(domain.Cancellation{Source: domain.SourceManifestReturn, ManifestID: m.ID, At: at}))
		item.MarkProcessed("", at)
		err := repo.ApplyItemOutcome(ctx, ports.ItemOutcome{Kind: domain.KindReturn, Item: item, Invoice: settled})
		if i == 0 {
			require.NoError(t, err)
			continue
		}
		require.ErrorIs(t, err, ports.ErrInvoiceAlreadySettled)
	}

	stored, err := repo.GetManifest(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusProcessed, stored.Items[0].Status)
	assert.Equal(t, domain.ItemStatusPending, stored.Items[1].Status)

	// The delivery flag is independent of the cancellation flag.
	paid := stored.Items[1].Invoice.Clone()
	require.NoError(t, paid.MarkPaid(domain.Payment{Source: domain.SourceManifestDelivery, ManifestID: m.ID, At: at}))
	require.NoError(t, repo.ApplyItemOutcome(ctx, ports.ItemOutcome{Kind: domain.KindDelivery, Item: stored.Items[1], Invoice: paid}))
}

func TestClaimForProcessing_TakesOverStaleClaim(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	m := seed(t, repo)
	claimedAt := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.ClaimForProcessing(ctx, m.ID, claimedAt, claimedAt))
	require.ErrorIs(t, repo.ClaimForProcessing(ctx, m.ID, claimedAt.Add(time.Second), claimedAt.Add(-time.Minute)), ports.ErrClaimConflict)

	// Item commits keep the claim fresh.
	item := m.Items[0]
	heartbeat := claimedAt.Add(10 * time.Minute)
	item.MarkError("provider timeout", heartbeat)
	require.NoError(t, repo.ApplyItemOutcome(ctx, ports.ItemOutcome{Item: item}))
	require.ErrorIs(t, repo.ClaimForProcessing(ctx, m.ID, heartbeat, claimedAt.Add(5*time.Minute)), ports.ErrClaimConflict)

	takenAt := heartbeat.Add(time.Hour)
	require.NoError(t, repo.ClaimForProcessing(ctx, m.ID, takenAt, heartbeat.Add(time.Minute)))
	stored, err := repo.GetManifest(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)
	assert.True(t, stored.ClaimedAt.Equal(takenAt))

	require.ErrorIs(t, repo.ClaimForProcessing(ctx, 99, takenAt, takenAt), ports.ErrNotFound)
}
