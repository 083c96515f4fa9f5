package app

import (
	"context"
	"time"

	"github.com/bobmcallan/stockhistory/internal/common"
	"github.com/bobmcallan/stockhistory/internal/models"
)

type reconcileFunc func(ctx context.Context) (*models.ReconcileReport, error)

// startReconcileScheduler runs a reconciliation pass on a fixed interval.
// Passes are idempotent within a calendar day, so the interval can be shorter
// than a day.
func startReconcileScheduler(ctx context.Context, run reconcileFunc, logger *common.Logger, interval time.Duration, runOnStartup bool) {
	logger.Info().Dur("interval", interval).Bool("run_on_startup", runOnStartup).Msg("Reconcile scheduler: started")

	if runOnStartup {
		runScheduledPass(ctx, run, logger)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Reconcile scheduler: stopped")
			return
		case <-ticker.C:
			runScheduledPass(ctx, run, logger)
		}
	}
}

func runScheduledPass(ctx context.Context, run reconcileFunc, logger *common.Logger) {
	start := time.Now()

	report, err := run(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Reconcile scheduler: pass failed")
		return
	}

	logger.Info().
		Int("updated", report.Updated).
		Int("failed", len(report.Failures)).
		Dur("elapsed", time.Since(start)).
		Msg("Reconcile scheduler: pass complete")
}
