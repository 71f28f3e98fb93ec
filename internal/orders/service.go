package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sew4mi/sew4mi-backend/internal/escrow"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
	"github.com/sew4mi/sew4mi-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines garment order operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.GarmentOrder, error)
	GetOrder(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) (*models.GarmentOrder, error)
	ListOrders(ctx context.Context, actorUserID uuid.UUID, actorRole enums.UserRole, status *enums.OrderStatus, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo         Repository
	tx           txRunner
	reviewWindow time.Duration
	now          func() time.Time
}

// milestoneNames label the seeded checkpoints per escrow stage.
var milestoneNames = map[enums.EscrowStage]string{
	enums.EscrowStageDeposit: "Deposit confirmed",
	enums.EscrowStageFitting: "Fitting completed",
	enums.EscrowStageFinal:   "Garment delivered",
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, reviewWindow time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if reviewWindow <= 0 {
		reviewWindow = 72 * time.Hour
	}
	return &service{
		repo:         repo,
		tx:           tx,
		reviewWindow: reviewWindow,
		now:          time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.GarmentOrder, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.TailorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tailor id required")
	}
	if input.TailorID == input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer cannot commission themselves")
	}
	if !input.GarmentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid garment type")
	}

	now := s.now().UTC()
	if input.DeliveryDate != nil && input.DeliveryDate.Before(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date must be in the future")
	}

	breakdown, err := escrow.CalculateBreakdown(input.TotalAmount)
	if err != nil {
		return nil, err
	}

	order := &models.GarmentOrder{
		ID:            uuid.New(),
		CustomerID:    input.CustomerID,
		TailorID:      input.TailorID,
		GarmentType:   input.GarmentType,
		Description:   input.Description,
		Currency:      enums.CurrencyGHS,
		Status:        enums.OrderStatusPendingDeposit,
		EscrowStage:   enums.EscrowStageDeposit,
		TotalAmount:   breakdown.Total,
		DepositAmount: breakdown.Deposit,
		FittingAmount: breakdown.Fitting,
		FinalAmount:   breakdown.Final,
		DeliveryDate:  input.DeliveryDate,
	}

	milestones := s.seedMilestones(order.ID, now)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create garment order")
		}
		if err := repo.CreateMilestones(ctx, milestones); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed order milestones")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Milestones = milestones
	return order, nil
}

// seedMilestones builds the three PENDING checkpoints. Deadlines are staggered
// one review window apart so the sweep never auto-approves a later stage
// before an earlier one.
func (s *service) seedMilestones(orderID uuid.UUID, createdAt time.Time) []models.Milestone {
	stages := []enums.EscrowStage{
		enums.EscrowStageDeposit,
		enums.EscrowStageFitting,
		enums.EscrowStageFinal,
	}

	milestones := make([]models.Milestone, 0, len(stages))
	for i, stage := range stages {
		milestones = append(milestones, models.Milestone{
			ID:                   uuid.New(),
			OrderID:              orderID,
			Stage:                stage,
			Name:                 milestoneNames[stage],
			ApprovalStatus:       enums.ApprovalStatusPending,
			AutoApprovalDeadline: createdAt.Add(time.Duration(i+1) * s.reviewWindow),
		})
	}
	return milestones
}

func (s *service) GetOrder(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) (*models.GarmentOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if actorRole != enums.UserRoleAdmin && order.CustomerID != actorUserID && order.TailorID != actorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, actorUserID uuid.UUID, actorRole enums.UserRole, status *enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	if actorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	filters := OrderFilters{Status: status}
	switch actorRole {
	case enums.UserRoleCustomer:
		filters.CustomerID = &actorUserID
	case enums.UserRoleTailor:
		filters.TailorID = &actorUserID
	case enums.UserRoleAdmin:
		// admins see everything
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	list, err := s.repo.ListOrders(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}
