package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

// PaymentTransaction records one escrow tranche release attempt against the
// mobile-money gateway. Rows are append-only: a retry after a failure writes a
// new row rather than mutating the failed one.
type PaymentTransaction struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	MilestoneID       uuid.UUID           `gorm:"column:milestone_id;type:uuid;not null"`
	Stage             enums.EscrowStage   `gorm:"column:stage;type:escrow_stage_enum;not null"`
	Amount            decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency          enums.Currency      `gorm:"column:currency;type:text;not null;default:'GHS'"`
	Status            enums.PaymentStatus `gorm:"column:status;type:payment_status_enum;not null;default:'initiated'"`
	ProviderReference *string             `gorm:"column:provider_reference"`
	FailureReason     *string             `gorm:"column:failure_reason"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
