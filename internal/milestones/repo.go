package milestones

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sew4mi/sew4mi-backend/internal/repo"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

type repository struct {
	repo.Base
}

// NewRepository builds a milestones repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindMilestone(ctx context.Context, milestoneID uuid.UUID) (*models.Milestone, error) {
	var milestone models.Milestone
	err := r.DB(ctx).
		Where("id = ?", milestoneID).
		First(&milestone).Error
	if err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (r *repository) FindMilestonesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := r.DB(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.GarmentOrder, error) {
	var order models.GarmentOrder
	err := r.DB(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ClosePendingMilestone(ctx context.Context, milestoneID uuid.UUID, status enums.ApprovalStatus, reviewedAt time.Time, rejectionReason *string) (bool, error) {
	updates := map[string]any{
		"approval_status":      status,
		"customer_reviewed_at": reviewedAt,
		"rejection_reason":     rejectionReason,
		"updated_at":           reviewedAt,
	}

	res := r.DB(ctx).
		Model(&models.Milestone{}).
		Where("id = ? AND approval_status = ?", milestoneID, enums.ApprovalStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreateApproval(ctx context.Context, approval *models.MilestoneApproval) error {
	return r.DB(ctx).Create(approval).Error
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.DB(ctx).
		Model(&models.GarmentOrder{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) FindPendingPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Milestone, error) {
	var milestones []models.Milestone
	q := r.DB(ctx).
		Where("approval_status = ? AND auto_approval_deadline <= ?", enums.ApprovalStatusPending, cutoff).
		Order("auto_approval_deadline ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}
