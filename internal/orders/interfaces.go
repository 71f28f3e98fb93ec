package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/pagination"
)

// Repository defines persistence operations for garment orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.GarmentOrder) error
	CreateMilestones(ctx context.Context, milestones []models.Milestone) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.GarmentOrder, error)
	ListOrders(ctx context.Context, filters OrderFilters, params pagination.Params) (*OrderList, error)
}
