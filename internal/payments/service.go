package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/sew4mi/sew4mi-backend/internal/escrow"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
	"github.com/sew4mi/sew4mi-backend/pkg/momo"
)

const initialBackoff = 500 * time.Millisecond

// Service releases escrow tranches to tailors and keeps the transaction trail.
type Service interface {
	ReleaseStagePayment(ctx context.Context, order models.GarmentOrder, milestone models.Milestone) error
	ListOrderTransactions(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error)
}

type service struct {
	repo       Repository
	provider   Provider
	logg       *logger.Logger
	maxRetries int
}

// NewService builds a payments service with the required dependencies.
func NewService(repo Repository, provider Provider, logg *logger.Logger, maxRetries int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &service{
		repo:       repo,
		provider:   provider,
		logg:       logg,
		maxRetries: maxRetries,
	}, nil
}

// ReleaseStagePayment pays out the tranche held for the milestone's stage.
// Each attempt writes its own transaction row; a milestone that already has a
// succeeded transaction is a no-op so callers can safely re-trigger.
func (s *service) ReleaseStagePayment(ctx context.Context, order models.GarmentOrder, milestone models.Milestone) error {
	amount, err := escrow.StageAmount(order.TotalAmount, milestone.Stage)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}

	done, err := s.repo.HasSucceededTransaction(ctx, milestone.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check released transactions")
	}
	if done {
		return nil
	}

	backoff := retry.WithMaxRetries(uint64(s.maxRetries), retry.NewExponential(initialBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return s.attemptRelease(ctx, order, milestone, amount)
	})
}

func (s *service) attemptRelease(ctx context.Context, order models.GarmentOrder, milestone models.Milestone, amount decimal.Decimal) error {
	txn := &models.PaymentTransaction{
		ID:          uuid.New(),
		OrderID:     order.ID,
		MilestoneID: milestone.ID,
		Stage:       milestone.Stage,
		Amount:      amount,
		Currency:    order.Currency,
		Status:      enums.PaymentStatusInitiated,
	}
	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment attempt")
	}

	resp, err := s.provider.Disburse(ctx, momo.DisbursementRequest{
		Reference:   txn.ID.String(),
		RecipientID: order.TailorID.String(),
		Amount:      amount,
		Currency:    string(order.Currency),
		Narration:   fmt.Sprintf("escrow %s tranche, order %s", milestone.Stage, order.ID),
	})
	if err != nil {
		reason := err.Error()
		if updateErr := s.repo.UpdateTransaction(ctx, txn.ID, map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		}); updateErr != nil {
			s.logg.Error(ctx, "mark payment attempt failed", updateErr)
		}

		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "momo disbursement")
		var apiErr *momo.APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return wrapped
		}
		return retry.RetryableError(wrapped)
	}

	if err := s.repo.UpdateTransaction(ctx, txn.ID, map[string]any{
		"status":             enums.PaymentStatusSucceeded,
		"provider_reference": resp.ProviderReference,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment attempt succeeded")
	}
	return nil
}

func (s *service) ListOrderTransactions(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.FindTransactionsByOrder(ctx, orderID)
}
