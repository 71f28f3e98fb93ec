package milestones

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the milestone approval workflow operations.
type Service interface {
	SubmitDecision(ctx context.Context, input SubmitDecisionInput) (*DecisionResult, error)
	AutoApprove(ctx context.Context, milestoneID uuid.UUID) (*DecisionResult, error)
	ListOrderMilestones(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) ([]models.Milestone, error)
}

type service struct {
	repo           Repository
	tx             txRunner
	limiter        RateLimiter
	releaser       PaymentReleaser
	logg           *logger.Logger
	releaseTimeout time.Duration
	now            func() time.Time
}

// NewService builds a milestones service with the required dependencies.
func NewService(repo Repository, tx txRunner, limiter RateLimiter, releaser PaymentReleaser, logg *logger.Logger, releaseTimeout time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("milestones repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter required")
	}
	if releaser == nil {
		return nil, fmt.Errorf("payment releaser required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if releaseTimeout <= 0 {
		releaseTimeout = 10 * time.Second
	}
	return &service{
		repo:           repo,
		tx:             tx,
		limiter:        limiter,
		releaser:       releaser,
		logg:           logg,
		releaseTimeout: releaseTimeout,
		now:            time.Now,
	}, nil
}

func (s *service) SubmitDecision(ctx context.Context, input SubmitDecisionInput) (*DecisionResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.MilestoneID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "milestone id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	action, status, err := mapDecision(input.Decision)
	if err != nil {
		return nil, err
	}

	var reason *string
	if status == enums.ApprovalStatusRejected {
		// The comment doubles as the rejection reason unless an explicit
		// reason overrides it.
		source := input.Reason
		if source == nil || strings.TrimSpace(*source) == "" {
			source = input.Comment
		}
		if source == nil || strings.TrimSpace(*source) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
		}
		trimmed := strings.TrimSpace(*source)
		reason = &trimmed
	}

	allowed, err := s.limiter.Allow(ctx, decisionRateScope(input.ActorUserID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decision rate limit check")
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many milestone decisions, retry later")
	}

	var result *DecisionResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		milestone, err := repo.FindMilestone(ctx, input.MilestoneID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "milestone not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load milestone")
		}
		if milestone.OrderID != input.OrderID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "milestone not found")
		}

		order, err := repo.FindOrder(ctx, milestone.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if input.ActorRole != enums.UserRoleAdmin && order.CustomerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}

		if milestone.ApprovalStatus.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "milestone already reviewed")
		}
		if milestone.Stage != order.EscrowStage {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "milestone is not at the order's current escrow stage")
		}

		now := s.now().UTC()
		if !now.Before(milestone.AutoApprovalDeadline) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "auto-approval deadline passed")
		}

		actor := input.ActorUserID
		committed, err := s.closeMilestone(ctx, repo, order, milestone, status, action, &actor, input.Comment, reason, now)
		if err != nil {
			return err
		}
		result = committed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Milestone.ApprovalStatus == enums.ApprovalStatusApproved {
		result.PaymentTriggered = s.releaseTranche(ctx, result)
	}
	return result, nil
}

func (s *service) AutoApprove(ctx context.Context, milestoneID uuid.UUID) (*DecisionResult, error) {
	if milestoneID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "milestone id required")
	}

	var result *DecisionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		milestone, err := repo.FindMilestone(ctx, milestoneID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "milestone not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load milestone")
		}
		if milestone.ApprovalStatus.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "milestone already reviewed")
		}

		now := s.now().UTC()
		if now.Before(milestone.AutoApprovalDeadline) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "auto-approval deadline not reached")
		}

		order, err := repo.FindOrder(ctx, milestone.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if milestone.Stage != order.EscrowStage {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "milestone is not at the order's current escrow stage")
		}

		committed, err := s.closeMilestone(ctx, repo, order, milestone, enums.ApprovalStatusApproved, enums.ApprovalActionAutoApproved, nil, nil, nil, now)
		if err != nil {
			return err
		}
		result = committed
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.PaymentTriggered = s.releaseTranche(ctx, result)
	return result, nil
}

func (s *service) ListOrderMilestones(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) ([]models.Milestone, error) {
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

	return s.repo.FindMilestonesByOrder(ctx, orderID)
}

// closeMilestone performs the guarded terminal transition, appends the audit
// record, and advances the order's escrow stage on approval. Runs inside the
// caller's transaction.
func (s *service) closeMilestone(ctx context.Context, repo Repository, order *models.GarmentOrder, milestone *models.Milestone, status enums.ApprovalStatus, action enums.ApprovalAction, actorUserID *uuid.UUID, comment, reason *string, now time.Time) (*DecisionResult, error) {
	updated, err := repo.ClosePendingMilestone(ctx, milestone.ID, status, now, reason)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close milestone")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "milestone already reviewed")
	}

	milestone.ApprovalStatus = status
	milestone.CustomerReviewedAt = &now
	milestone.RejectionReason = reason

	approval := models.MilestoneApproval{
		MilestoneID: milestone.ID,
		OrderID:     order.ID,
		ActorUserID: actorUserID,
		Action:      action,
		Comment:     comment,
		ReviewedAt:  now,
	}
	if err := repo.CreateApproval(ctx, &approval); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record milestone approval")
	}

	orderStatus := order.Status
	orderStage := order.EscrowStage

	if status == enums.ApprovalStatusApproved {
		nextStage, err := milestone.Stage.Next()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advance escrow stage")
		}

		updates := map[string]any{"escrow_stage": nextStage, "updated_at": now}
		switch milestone.Stage {
		case enums.EscrowStageDeposit:
			orderStatus = enums.OrderStatusInProgress
			updates["status"] = orderStatus
		case enums.EscrowStageFinal:
			orderStatus = enums.OrderStatusCompleted
			updates["status"] = orderStatus
			updates["completed_at"] = now
		}

		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order escrow stage")
		}
		orderStage = nextStage
	}

	snapshot := *order
	snapshot.Status = orderStatus
	snapshot.EscrowStage = orderStage

	return &DecisionResult{
		Milestone:        *milestone,
		Approval:         approval,
		OrderStatus:      orderStatus,
		OrderEscrowStage: orderStage,
		order:            snapshot,
	}, nil
}

// releaseTranche attempts the post-commit payment release. Failures are
// reported in the result, never as an error: the approval already committed.
func (s *service) releaseTranche(ctx context.Context, result *DecisionResult) bool {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.releaseTimeout)
	defer cancel()

	if err := s.releaser.ReleaseStagePayment(releaseCtx, result.order, result.Milestone); err != nil {
		logCtx := s.logg.WithOrderID(ctx, result.Milestone.OrderID.String())
		logCtx = s.logg.WithMilestoneID(logCtx, result.Milestone.ID.String())
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "escrow tranche release failed, approval kept")
		return false
	}
	return true
}

func mapDecision(decision Decision) (enums.ApprovalAction, enums.ApprovalStatus, error) {
	switch decision {
	case DecisionApprove:
		return enums.ApprovalActionApproved, enums.ApprovalStatusApproved, nil
	case DecisionReject:
		return enums.ApprovalActionRejected, enums.ApprovalStatusRejected, nil
	default:
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}
}

func decisionRateScope(actorUserID uuid.UUID) string {
	return fmt.Sprintf("milestone-decision:%s", actorUserID)
}
