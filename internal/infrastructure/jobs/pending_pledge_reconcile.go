package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"pharmapool.backend/internal/usecases"
	"pharmapool.backend/pkg/logger"
)

// PendingReconciler re-verifies stale pending pledges
type PendingReconciler interface {
	ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (*usecases.ReconcileSummary, error)
}

// PendingPledgeReconcileJob periodically asks the gateway about pledges
// nobody verified, e.g. when the payer closed the checkout tab.
type PendingPledgeReconcileJob struct {
	reconciler PendingReconciler
	interval   time.Duration
	olderThan  time.Duration
	batchSize  int
	stop       chan struct{}
}

func NewPendingPledgeReconcileJob(reconciler PendingReconciler, interval, olderThan time.Duration, batchSize int) *PendingPledgeReconcileJob {
	if interval <= 0 {
		interval = time.Minute
	}
	if olderThan <= 0 {
		olderThan = 15 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &PendingPledgeReconcileJob{
		reconciler: reconciler,
		interval:   interval,
		olderThan:  olderThan,
		batchSize:  batchSize,
		stop:       make(chan struct{}),
	}
}

func (j *PendingPledgeReconcileJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting pending pledge reconcile job",
		zap.Duration("interval", j.interval),
		zap.Duration("older_than", j.olderThan),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Pending pledge reconcile job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Pending pledge reconcile job stopped")
			return
		case <-ticker.C:
			j.reconcile(ctx)
		}
	}
}

func (j *PendingPledgeReconcileJob) Stop() {
	close(j.stop)
}

func (j *PendingPledgeReconcileJob) reconcile(ctx context.Context) {
	summary, err := j.reconciler.ReconcilePending(ctx, j.olderThan, j.batchSize)
	if err != nil {
		logger.Error(ctx, "Pending pledge reconciliation aborted", zap.Error(err))
		return
	}
	if summary == nil || summary.Checked == 0 {
		return
	}

	logger.Info(ctx, "Reconciled pending pledges",
		zap.Int("checked", summary.Checked),
		zap.Int("verified", summary.Verified),
		zap.Int("removed", summary.Removed),
		zap.Int("still_pending", summary.Pending),
		zap.Int("failed", summary.Failed),
	)
}
