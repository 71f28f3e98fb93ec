package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sew4mi/sew4mi-backend/internal/repo"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	"github.com/sew4mi/sew4mi-backend/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.GarmentOrder) error {
	return r.DB(ctx).Create(order).Error
}

func (r *repository) CreateMilestones(ctx context.Context, milestones []models.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&milestones).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.GarmentOrder, error) {
	var order models.GarmentOrder
	err := r.DB(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context, filters OrderFilters, params pagination.Params) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	q := r.DB(ctx).Model(&models.GarmentOrder{})
	if filters.CustomerID != nil {
		q = q.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.TailorID != nil {
		q = q.Where("tailor_id = ?", *filters.TailorID)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.GarmentOrder
	err = q.Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}

	orderIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		orderIDs = append(orderIDs, row.ID)
	}
	pending, err := r.countPendingMilestones(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		list.Orders = append(list.Orders, OrderSummary{
			ID:            row.ID,
			OrderNumber:   row.OrderNumber,
			GarmentType:   row.GarmentType,
			Status:        row.Status,
			EscrowStage:   row.EscrowStage,
			Currency:      row.Currency,
			TotalAmount:   row.TotalAmount,
			DeliveryDate:  row.DeliveryDate,
			CreatedAt:     row.CreatedAt,
			CustomerID:    row.CustomerID,
			TailorID:      row.TailorID,
			PendingStages: pending[row.ID],
		})
	}
	return list, nil
}

func (r *repository) countPendingMilestones(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(orderIDs))
	if len(orderIDs) == 0 {
		return counts, nil
	}

	type row struct {
		OrderID uuid.UUID
		Total   int
	}
	var rows []row
	err := r.DB(ctx).
		Model(&models.Milestone{}).
		Select("order_id, COUNT(*) AS total").
		Where("order_id IN ? AND approval_status = ?", orderIDs, enums.ApprovalStatusPending).
		Group("order_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.OrderID] = r.Total
	}
	return counts, nil
}
