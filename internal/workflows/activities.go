package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/seismeta/internal/core/domain"
	"github.com/samirrijal/seismeta/internal/pkg/metrics"
)

// BinGridRefresher recomputes and republishes a survey's bin grid.
type BinGridRefresher interface {
	Refresh(ctx context.Context, sdpath string) (domain.BinGrid, error)
}

// BinGridActivities holds the activity implementations for the refresh workflow.
type BinGridActivities struct {
	BinGrids BinGridRefresher
}

// RefreshBinGrid recomputes one survey's bin grid. Missing surveys and
// invalid geometry fail without retry.
func (a *BinGridActivities) RefreshBinGrid(ctx context.Context, sdpath string) error {
	_, err := a.BinGrids.Refresh(ctx, sdpath)
	if err == nil {
		metrics.WorkflowRefreshes.WithLabelValues("ok").Inc()
		activity.GetLogger(ctx).Info("bin grid refreshed", "sdpath", sdpath)
		return nil
	}

	if errors.Is(err, domain.ErrSurveyNotFound) ||
		errors.Is(err, domain.ErrInvalidSurvey) ||
		errors.Is(err, domain.ErrAxisCountTooSmall) ||
		errors.Is(err, domain.ErrDegenerateGeometry) {
		metrics.WorkflowRefreshes.WithLabelValues("rejected").Inc()
		return temporal.NewNonRetryableApplicationError(err.Error(), "InvalidSurvey", err)
	}

	metrics.WorkflowRefreshes.WithLabelValues("error").Inc()
	return fmt.Errorf("refresh %s: %w", sdpath, err)
}
