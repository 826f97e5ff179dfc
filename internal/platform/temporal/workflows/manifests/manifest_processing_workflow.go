package manifests

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	manifestactivities "github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/activities/manifests"
	"github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/sequences"
)

const (
	// ManifestProcessingWorkflowName is the public identifier for registering the workflow.
	ManifestProcessingWorkflowName = "manifests.workflows.Processing"
	// ManifestProcessingTaskQueue is the queue consumed by the worker processing manifest runs.
	ManifestProcessingTaskQueue = "MANIFEST_PROCESSING"
)

// ManifestProcessingWorkflowInput captures the run request.
type ManifestProcessingWorkflowInput struct {
	Command types.ProcessManifestInput
	TraceID string
}

// ManifestProcessingWorkflow runs one manifest through its fiscal flow.
func ManifestProcessingWorkflow(ctx workflow.Context, input ManifestProcessingWorkflowInput) (*manifestactivities.ProcessOutcome, error) {
	logger := workflow.GetLogger(ctx)
	manifestID := input.Command.ManifestID
	logger.Info("ManifestProcessingWorkflow started", withTraceID(input.TraceID, "manifestId", manifestID)...)
	outcome, err := sequences.RunManifestProcessingSequence(ctx, input.Command)
	if err != nil {
		logger.Error("ManifestProcessingWorkflow failed", withTraceID(input.TraceID, "manifestId", manifestID, "error", err)...)
		return nil, err
	}
	logger.Info("ManifestProcessingWorkflow completed", withTraceID(input.TraceID, "manifestId", manifestID)...)
	return outcome, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
