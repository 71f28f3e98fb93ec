package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

// GarmentOrder represents a custom garment commission placed by a customer
// with a tailor. The escrow breakdown is persisted alongside the total so the
// tranche amounts on record never drift from what the customer agreed to.
type GarmentOrder struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   int64             `gorm:"column:order_number;->"`
	CustomerID    uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	TailorID      uuid.UUID         `gorm:"column:tailor_id;type:uuid;not null"`
	GarmentType   enums.GarmentType `gorm:"column:garment_type;type:garment_type_enum;not null"`
	Description   *string           `gorm:"column:description"`
	Currency      enums.Currency    `gorm:"column:currency;type:text;not null;default:'GHS'"`
	Status        enums.OrderStatus `gorm:"column:status;type:order_status_enum;not null;default:'pending_deposit'"`
	EscrowStage   enums.EscrowStage `gorm:"column:escrow_stage;type:escrow_stage_enum;not null;default:'DEPOSIT'"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	DepositAmount decimal.Decimal   `gorm:"column:deposit_amount;type:numeric(12,2);not null"`
	FittingAmount decimal.Decimal   `gorm:"column:fitting_amount;type:numeric(12,2);not null"`
	FinalAmount   decimal.Decimal   `gorm:"column:final_amount;type:numeric(12,2);not null"`
	DeliveryDate  *time.Time        `gorm:"column:delivery_date"`
	Milestones    []Milestone       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CompletedAt   *time.Time        `gorm:"column:completed_at"`
	CancelledAt   *time.Time        `gorm:"column:cancelled_at"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (GarmentOrder) TableName() string {
	return "garment_orders"
}
