package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TaskQueue is the default queue the refresh worker polls.
const TaskQueue = "bingrid-refresh"

// BinGridRefreshInput is the input for the bin grid refresh workflow.
type BinGridRefreshInput struct {
	SDPaths []string
}

// BinGridRefreshResult reports which surveys were refreshed and why the
// others failed.
type BinGridRefreshResult struct {
	Refreshed []string
	Failed    map[string]string
}

// BinGridRefreshWorkflow recomputes the bin grid of every listed survey.
// Activities run concurrently; a failing survey does not stop the others.
func BinGridRefreshWorkflow(ctx workflow.Context, input BinGridRefreshInput) (BinGridRefreshResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting bin grid refresh", "surveys", len(input.SDPaths))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	futures := make([]workflow.Future, len(input.SDPaths))
	for i, sdpath := range input.SDPaths {
		futures[i] = workflow.ExecuteActivity(ctx, "RefreshBinGrid", sdpath)
	}

	result := BinGridRefreshResult{Failed: map[string]string{}}
	for i, f := range futures {
		sdpath := input.SDPaths[i]
		if err := f.Get(ctx, nil); err != nil {
			logger.Warn("bin grid refresh failed", "sdpath", sdpath, "error", err)
			result.Failed[sdpath] = err.Error()
			continue
		}
		result.Refreshed = append(result.Refreshed, sdpath)
	}

	logger.Info("Bin grid refresh finished", "refreshed", len(result.Refreshed), "failed", len(result.Failed))
	return result, nil
}
