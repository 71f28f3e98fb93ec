package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/sew4mi/sew4mi-backend/internal/milestones"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
)

const defaultSweepBatch = 200

type pendingMilestoneReader interface {
	FindPendingPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Milestone, error)
}

// milestoneAutoApprover is the surface of the milestones service the sweep uses.
type milestoneAutoApprover interface {
	AutoApprove(ctx context.Context, milestoneID uuid.UUID) (*milestones.DecisionResult, error)
}

// MilestoneAutoApproveJobParams configure the deadline sweep.
type MilestoneAutoApproveJobParams struct {
	Logger    *logger.Logger
	Reader    pendingMilestoneReader
	Approver  milestoneAutoApprover
	BatchSize int
	Now       func() time.Time
}

type milestoneAutoApproveJob struct {
	logg      *logger.Logger
	reader    pendingMilestoneReader
	approver  milestoneAutoApprover
	batchSize int
	now       func() time.Time
}

// NewMilestoneAutoApproveJob builds the job that approves milestones whose
// review deadline lapsed without a customer decision.
func NewMilestoneAutoApproveJob(params MilestoneAutoApproveJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("pending milestones reader required")
	}
	if params.Approver == nil {
		return nil, fmt.Errorf("milestone approver required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatch
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &milestoneAutoApproveJob{
		logg:      params.Logger,
		reader:    params.Reader,
		approver:  params.Approver,
		batchSize: batchSize,
		now:       now,
	}, nil
}

func (j *milestoneAutoApproveJob) Name() string {
	return "milestone-auto-approve"
}

func (j *milestoneAutoApproveJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()

	milestones, err := j.reader.FindPendingPastDeadline(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("find overdue milestones: %w", err)
	}
	if len(milestones) == 0 {
		return nil
	}

	var errs error
	approved := 0
	for _, milestone := range milestones {
		mCtx := j.logg.WithMilestoneID(ctx, milestone.ID.String())
		mCtx = j.logg.WithOrderID(mCtx, milestone.OrderID.String())

		result, err := j.approver.AutoApprove(mCtx, milestone.ID)
		if err != nil {
			// a customer decision can land between the scan and the approval
			if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
				j.logg.Info(mCtx, "milestone resolved before sweep, skipping")
				continue
			}
			j.logg.Error(mCtx, "auto approval failed", err)
			errs = multierr.Append(errs, fmt.Errorf("milestone %s: %w", milestone.ID, err))
			continue
		}
		if !result.PaymentTriggered {
			j.logg.Warn(mCtx, "auto approval committed but tranche release pending")
		}
		approved++
	}

	summary := j.logg.WithFields(ctx, map[string]any{
		"scanned":  len(milestones),
		"approved": approved,
	})
	j.logg.Info(summary, "milestone sweep complete")
	return errs
}
