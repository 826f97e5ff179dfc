package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	manifestactivities "github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/activities/manifests"
)

// RunManifestProcessingSequence executes the processing activity exactly once.
// Provider calls are irreversible, so a failed attempt is never replayed automatically.
func RunManifestProcessingSequence(ctx workflow.Context, input types.ProcessManifestInput) (*manifestactivities.ProcessOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("manifest processing sequence started", "manifestId", input.ManifestID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Hour,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	var outcome manifestactivities.ProcessOutcome
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), manifestactivities.ProcessManifestActivityName, input).Get(ctx, &outcome)
	if err != nil {
		logger.Error("manifest processing sequence failed", "manifestId", input.ManifestID, "error", err)
		return nil, err
	}
	if outcome.Rejection != "" {
		logger.Warn("manifest processing sequence rejected", "manifestId", input.ManifestID, "reason", outcome.Rejection)
	} else {
		logger.Info("manifest processing sequence completed", "manifestId", input.ManifestID)
	}
	return &outcome, nil
}
