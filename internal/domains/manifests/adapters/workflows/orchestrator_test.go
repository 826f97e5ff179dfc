package workflows

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	manifestsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
	manifestactivities "github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/activities/manifests"
	manifestworkflows "github.com/Apurer/go-gin-fiscal-server/internal/platform/temporal/workflows/manifests"
)

func TestManifestProcessingWorkflowReturnsActivityOutcome(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	attempts := 0
	env.RegisterActivityWithOptions(func(_ context.Context, input types.ProcessManifestInput) (*manifestactivities.ProcessOutcome, error) {
		attempts++
		return &manifestactivities.ProcessOutcome{Result: &types.BatchResult{
			Success:        true,
			TotalProcessed: 2,
			SuccessCount:   1,
			SkippedCount:   1,
			Errors:         []types.ItemError{},
		}}, nil
	}, activity.RegisterOptions{Name: manifestactivities.ProcessManifestActivityName})

	env.ExecuteWorkflow(manifestworkflows.ManifestProcessingWorkflow, manifestworkflows.ManifestProcessingWorkflowInput{
		Command: types.ProcessManifestInput{ManifestID: 7, Actor: "ana"},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var outcome manifestactivities.ProcessOutcome
	require.NoError(t, env.GetWorkflowResult(&outcome))
	require.Equal(t, 2, outcome.Result.TotalProcessed)
	require.Equal(t, 1, attempts)
}

func TestManifestProcessingWorkflowDoesNotRetryFailedRun(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	attempts := 0
	env.RegisterActivityWithOptions(func(context.Context, types.ProcessManifestInput) (*manifestactivities.ProcessOutcome, error) {
		attempts++
		return nil, context.DeadlineExceeded
	}, activity.RegisterOptions{Name: manifestactivities.ProcessManifestActivityName})
	env.SetTestTimeout(10 * time.Second)

	env.ExecuteWorkflow(manifestworkflows.ManifestProcessingWorkflow, manifestworkflows.ManifestProcessingWorkflowInput{
		Command: types.ProcessManifestInput{ManifestID: 7, Actor: "ana"},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.Equal(t, 1, attempts)
}

func TestFromOutcomeRestoresPreconditionError(t *testing.T) {
	result, err := fromOutcome(&manifestactivities.ProcessOutcome{Rejection: "manifest precondition failed: manifest is not confirmed"})
	require.ErrorIs(t, err, manifestsapp.ErrPrecondition)
	require.Equal(t, "manifest precondition failed: manifest is not confirmed", err.Error())
	require.NotNil(t, result)
	require.Len(t, result.Errors, 1)

	ok := &types.BatchResult{Success: true}
	result, err = fromOutcome(&manifestactivities.ProcessOutcome{Result: ok})
	require.NoError(t, err)
	require.Same(t, ok, result)
}

type stubService struct {
	ports.Service
	calls int
}

func (s *stubService) Process(context.Context, types.ProcessManifestInput) (*types.BatchResult, error) {
	s.calls++
	return &types.BatchResult{}, nil
}

func TestInlineManifestWorkflowsDelegates(t *testing.T) {
	svc := &stubService{}
	_, err := NewInlineManifestWorkflows(svc).ProcessManifest(context.Background(), types.ProcessManifestInput{ManifestID: 1, Actor: "ana"})
	require.NoError(t, err)
	require.Equal(t, 1, svc.calls)
}
