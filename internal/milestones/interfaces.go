package milestones

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

// Repository defines persistence operations for milestones and their audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindMilestone(ctx context.Context, milestoneID uuid.UUID) (*models.Milestone, error)
	FindMilestonesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Milestone, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.GarmentOrder, error)
	// ClosePendingMilestone moves a PENDING milestone to the terminal status and
	// reports whether a row was actually updated. A false return means another
	// writer closed the milestone first.
	ClosePendingMilestone(ctx context.Context, milestoneID uuid.UUID, status enums.ApprovalStatus, reviewedAt time.Time, rejectionReason *string) (bool, error)
	CreateApproval(ctx context.Context, approval *models.MilestoneApproval) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	FindPendingPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Milestone, error)
}

// RateLimiter throttles decision submissions per actor.
type RateLimiter interface {
	Allow(ctx context.Context, scope string) (bool, error)
}

// PaymentReleaser triggers the escrow tranche release for an approved milestone.
type PaymentReleaser interface {
	ReleaseStagePayment(ctx context.Context, order models.GarmentOrder, milestone models.Milestone) error
}
