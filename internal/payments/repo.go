package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sew4mi/sew4mi-backend/internal/repo"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

type repository struct {
	repo.Base
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.DB(ctx).Create(txn).Error
}

func (r *repository) UpdateTransaction(ctx context.Context, txnID uuid.UUID, updates map[string]any) error {
	return r.DB(ctx).
		Model(&models.PaymentTransaction{}).
		Where("id = ?", txnID).
		Updates(updates).Error
}

func (r *repository) FindTransactionsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.DB(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) HasSucceededTransaction(ctx context.Context, milestoneID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.PaymentTransaction{}).
		Where("milestone_id = ? AND status = ?", milestoneID, enums.PaymentStatusSucceeded).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
