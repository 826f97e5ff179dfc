package ports

import (
	"context"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
)

// Service exposes the manifest use cases to adapters (inbound/driving port).
type Service interface {
	GetManifest(ctx context.Context, input types.ManifestIdentifier) (*domain.Manifest, error)
	RequestVerification(ctx context.Context, input types.ManifestIdentifier) (*domain.Manifest, error)
	Confirm(ctx context.Context, input types.ConfirmManifestInput) (*domain.Manifest, error)
	// Process dispatches to the flow matching the manifest kind.
	Process(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error)
	ProcessReturn(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error)
	ProcessDelivery(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error)
	ListAudit(ctx context.Context, input types.ManifestIdentifier) ([]domain.AuditEntry, error)
}
