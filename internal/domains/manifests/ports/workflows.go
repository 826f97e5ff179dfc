package ports

import (
	"context"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
)

// WorkflowOrchestrator runs manifest processing either durably or inline.
type WorkflowOrchestrator interface {
	ProcessManifest(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error)
}
