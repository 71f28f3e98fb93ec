package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/momo"
)

// Provider is the narrow surface of the mobile-money gateway used here.
type Provider interface {
	Disburse(ctx context.Context, req momo.DisbursementRequest) (*momo.DisbursementResponse, error)
}

// Repository defines persistence operations for payment transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error
	UpdateTransaction(ctx context.Context, txnID uuid.UUID, updates map[string]any) error
	FindTransactionsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error)
	HasSucceededTransaction(ctx context.Context, milestoneID uuid.UUID) (bool, error)
}
