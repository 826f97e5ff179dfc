//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	manifestpostgres "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
	"github.com/Apurer/go-gin-fiscal-server/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("fiscal_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func seed(t *testing.T, repo *manifestpostgres.Repository) (*domain.Manifest, *domain.Invoice) {
	t.Helper()
	ctx := context.Background()
	inv, err := repo.SaveInvoice(ctx, &domain.Invoice{
		CompanyID:  1,
		Series:     "FCT",
		Number:     "100",
		OrderTotal: decimal.RequireFromString("123.45"),
	})
	require.NoError(t, err)

	m, err := domain.NewManifest(0, "MF-PG", domain.KindDelivery, 1, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	invoiceID := inv.ID
	m.Items = []domain.ManifestItem{
		{ShipmentNumber: "AWB1", InvoiceID: &invoiceID},
		{ShipmentNumber: "AWB2"},
	}
	saved, err := repo.SaveManifest(ctx, m)
	require.NoError(t, err)
	return saved, inv
}

func TestPostgresRepository_SaveAndHydrate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := manifestpostgres.NewRepository(db)
	m, inv := seed(t, repo)

	require.Len(t, m.Items, 2)
	assert.Equal(t, domain.StatusDraft, m.Status)
	assert.Equal(t, domain.ItemStatusPending, m.Items[0].Status)
	require.NotNil(t, m.Items[0].Invoice)
	assert.Equal(t, inv.ID, m.Items[0].Invoice.ID)
	assert.True(t, m.Items[0].Invoice.OrderTotal.Equal(decimal.RequireFromString("123.45")))
	assert.Nil(t, m.Items[1].Invoice)

	_, err := repo.GetManifest(context.Background(), 9999)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_ClaimIsExclusive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := manifestpostgres.NewRepository(db)
	ctx := context.Background()
	m, _ := seed(t, repo)

	claimedAt := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	fresh := claimedAt.Add(-time.Minute)
	require.ErrorIs(t, repo.ClaimForProcessing(ctx, m.ID, claimedAt, fresh), ports.ErrClaimConflict)

	require.NoError(t, m.Confirm("ana", time.Now()))
	require.NoError(t, repo.UpdateLifecycle(ctx, m))
	require.NoError(t, repo.ClaimForProcessing(ctx, m.ID, claimedAt, fresh))
	require.ErrorIs(t, repo.ClaimForProcessing(ctx, m.ID, claimedAt, fresh), ports.ErrClaimConflict)
	require.ErrorIs(t, repo.ClaimForProcessing(ctx, 9999, claimedAt, fresh), ports.ErrNotFound)

	takenAt := claimedAt.Add(time.Hour)
	require.NoError(t, repo.ClaimForProcessing(ctx, m.ID, takenAt, claimedAt.Add(time.Minute)))
	reclaimed, err := repo.GetManifest(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, reclaimed.ClaimedAt)
	assert.True(t, reclaimed.ClaimedAt.Equal(takenAt))

	require.NoError(t, repo.CompleteManifest(ctx, m.ID, time.Now()))
	stored, err = repo.GetManifest(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, stored.Status)
	require.ErrorIs(t, repo.CompleteManifest(ctx, m.ID, time.Now()), domain.ErrInvalidTransition)
}

func TestPostgresRepository_ApplyItemOutcome(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := manifestpostgres.NewRepository(db)
	ctx := context.Background()
	m, _ := seed(t, repo)
	at := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

	item := m.Items[0]
	settled := item.Invoice.Clone()
	require.NoError(t, settled.MarkPaid(domain.Payment{Source: domain.SourceManifestDelivery, ManifestID: m.ID, At: at}))
	item.MarkProcessed("", at)
	audit := domain.NewInvoiceAuditEntry("ana", domain.ActionInvoicePaidViaManifest, settled, domain.AuditMetadata{
		ManifestID:     m.ID,
		ShipmentNumber: item.ShipmentNumber,
		Source:         domain.SourceManifestDelivery,
	}, at)
	outcome := ports.ItemOutcome{Kind: domain.KindDelivery, Item: item, Invoice: settled, Audit: &audit}
	require.NoError(t, repo.ApplyItemOutcome(ctx, outcome))
	require.ErrorIs(t, repo.ApplyItemOutcome(ctx, outcome), ports.ErrInvoiceAlreadySettled)

	failed := m.Items[1]
	failed.MarkError("no invoice linked", at)
	require.NoError(t, repo.ApplyItemOutcome(ctx, ports.ItemOutcome{Item: failed}))

	stored, err := repo.GetManifest(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusProcessed, stored.Items[0].Status)
	assert.True(t, stored.Items[0].Invoice.IsPaid())
	assert.True(t, stored.Items[0].Invoice.PaidAmount.Equal(decimal.RequireFromString("123.45")))
	assert.Equal(t, domain.ItemStatusError, stored.Items[1].Status)
	assert.Equal(t, "no invoice linked", stored.Items[1].ErrorMessage)

	entries, err := repo.ListAudit(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ID, entries[0].ID)
	assert.Equal(t, "AWB1", entries[0].Metadata.ShipmentNumber)
	assert.Equal(t, "100", entries[0].Metadata.InvoiceNumber)
}
