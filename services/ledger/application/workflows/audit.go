// Package workflows holds the Temporal workflows for the ledger bounded
// context. The conservation audit is the watchdog for the sync bypass: sync
// overwrites batch state without running the stock logic, so drift between
// "trays × 30" and "quantity + live sales" is possible and must be visible.
package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/eggledger/pkg/logger"
	"github.com/ghuser/eggledger/services/ledger/domain/repositories"
)

// TaskQueue is the Temporal task queue the audit worker listens on.
const TaskQueue = "eggledger-audit"

// AuditWorkflowID is the fixed workflow ID for the cron audit, so restarts
// never schedule a second copy.
const AuditWorkflowID = "conservation-audit"

// AuditActivities holds the activity implementations for the audit workflow.
type AuditActivities struct {
	repo repositories.LedgerRepository
	log  logger.Logger
}

// NewAuditActivities returns AuditActivities backed by the given repository.
func NewAuditActivities(repo repositories.LedgerRepository, log logger.Logger) *AuditActivities {
	return &AuditActivities{repo: repo, log: log}
}

// AuditConservation queries batches whose quantity no longer matches their
// initial quantity minus live sales, and logs each one.
func (a *AuditActivities) AuditConservation(ctx context.Context) ([]repositories.ConservationDrift, error) {
	drifts, err := a.repo.AuditConservation(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drifts {
		a.log.WarnContext(ctx, "conservation drift",
			"batch_id", d.BatchID,
			"name", d.Name,
			"expected", d.Expected,
			"quantity", d.Quantity,
			"sold_total", d.SoldTotal,
		)
	}
	return drifts, nil
}

// ConservationAuditWorkflow runs the conservation audit once and returns the
// number of drifted batches. Scheduled as a cron workflow by cmd/worker.
func ConservationAuditWorkflow(ctx workflow.Context) (int, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var drifts []repositories.ConservationDrift
	if err := workflow.ExecuteActivity(ctx, "AuditConservation").Get(ctx, &drifts); err != nil {
		return 0, err
	}

	if len(drifts) > 0 {
		workflow.GetLogger(ctx).Warn("conservation audit found drifted batches", "count", len(drifts))
	}
	return len(drifts), nil
}
