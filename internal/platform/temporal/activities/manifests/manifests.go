package manifests

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"

	manifestsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

const (
	// ProcessManifestActivityName runs one processing pass over a confirmed manifest.
	ProcessManifestActivityName = "manifests.activities.ProcessManifest"

	heartbeatEvery = 10 * time.Second
)

// ProcessOutcome carries the batch result across the activity boundary.
// Rejection is set when the run was refused before any item was touched.
type ProcessOutcome struct {
	Result    *types.BatchResult
	Rejection string
}

// Activities groups activities that operate on the manifests bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the manifests service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// ProcessManifest runs the flow matching the manifest kind. Precondition failures are returned
// as a rejected outcome, not an activity error, so they are never retried.
func (a *Activities) ProcessManifest(ctx context.Context, input types.ProcessManifestInput) (*ProcessOutcome, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("manifest activity not initialized", "manifestId", input.ManifestID)
		return nil, errors.New("manifest activity not initialized")
	}
	logger.Info("ProcessManifest activity started", "manifestId", input.ManifestID, "actor", input.Actor)

	stop := make(chan struct{})
	defer close(stop)
	go heartbeat(ctx, stop, input.ManifestID)

	result, err := a.service.Process(ctx, input)
	if err != nil {
		if errors.Is(err, manifestsapp.ErrPrecondition) {
			logger.Warn("ProcessManifest rejected", "manifestId", input.ManifestID, "error", err)
			return &ProcessOutcome{Result: result, Rejection: err.Error()}, nil
		}
		logger.Error("ProcessManifest activity failed", "manifestId", input.ManifestID, "error", err)
		return nil, err
	}
	logger.Info("ProcessManifest activity completed",
		"manifestId", input.ManifestID,
		"total", result.TotalProcessed,
		"success", result.SuccessCount,
		"errors", result.ErrorCount,
		"skipped", result.SkippedCount)
	return &ProcessOutcome{Result: result}, nil
}

func heartbeat(ctx context.Context, stop <-chan struct{}, manifestID int64) {
	ticker := time.NewTicker(heartbeatEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			activity.RecordHeartbeat(ctx, manifestID)
		}
	}
}
