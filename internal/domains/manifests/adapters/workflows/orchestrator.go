package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	manifestsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
	manifestactivities "github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/activities/manifests"
	manifestworkflows "github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/workflows/manifests"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalManifestWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineManifestWorkflows)(nil)
)

// TemporalManifestWorkflows starts manifest runs on a Temporal cluster.
type TemporalManifestWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalManifestWorkflows wires a Temporal client into the orchestrator.
func NewTemporalManifestWorkflows(c client.Client) *TemporalManifestWorkflows {
	return &TemporalManifestWorkflows{client: c, taskQueue: manifestworkflows.ManifestProcessingTaskQueue}
}

// ProcessManifest starts (or joins) the run for the manifest and waits for its result.
// The workflow id is derived from the manifest id, so concurrent callers share one execution.
func (o *TemporalManifestWorkflows) ProcessManifest(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal manifest workflows not configured")
	}
	workflowID := BuildWorkflowID(input.ManifestID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		manifestworkflows.ManifestProcessingWorkflow,
		manifestworkflows.ManifestProcessingWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var outcome manifestactivities.ProcessOutcome
	if err := run.Get(ctx, &outcome); err != nil {
		return nil, err
	}
	return fromOutcome(&outcome)
}

// InlineManifestWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineManifestWorkflows struct {
	service ports.Service
}

// NewInlineManifestWorkflows wraps the manifests service for synchronous execution.
func NewInlineManifestWorkflows(service ports.Service) *InlineManifestWorkflows {
	return &InlineManifestWorkflows{service: service}
}

// ProcessManifest delegates to the application service without durable orchestration.
func (o *InlineManifestWorkflows) ProcessManifest(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline manifest workflows not configured")
	}
	return o.service.Process(ctx, input)
}

// BuildWorkflowID names the single execution allowed per manifest.
func BuildWorkflowID(manifestID int64) string {
	return fmt.Sprintf("manifest-processing-%d", manifestID)
}

func fromOutcome(outcome *manifestactivities.ProcessOutcome) (*types.BatchResult, error) {
	if outcome == nil {
		return nil, errors.New("manifest workflow returned no outcome")
	}
	if outcome.Rejection != "" {
		result := outcome.Result
		if result == nil {
			result = types.NewRejectedResult(outcome.Rejection)
		}
		reason := strings.TrimPrefix(outcome.Rejection, manifestsapp.ErrPrecondition.Error()+": ")
		return result, fmt.Errorf("%w: %s", manifestsapp.ErrPrecondition, reason)
	}
	return outcome.Result, nil
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
