package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

// CreateOrderInput captures the data required to commission a garment.
type CreateOrderInput struct {
	CustomerID   uuid.UUID
	TailorID     uuid.UUID
	GarmentType  enums.GarmentType
	Description  *string
	TotalAmount  decimal.Decimal
	DeliveryDate *time.Time
}

// OrderFilters describe the inputs supported by the order lists.
type OrderFilters struct {
	CustomerID *uuid.UUID
	TailorID   *uuid.UUID
	Status     *enums.OrderStatus
}

// OrderSummary exposes the aggregated fields returned in the order list.
type OrderSummary struct {
	ID            uuid.UUID         `json:"id"`
	OrderNumber   int64             `json:"order_number"`
	GarmentType   enums.GarmentType `json:"garment_type"`
	Status        enums.OrderStatus `json:"status"`
	EscrowStage   enums.EscrowStage `json:"escrow_stage"`
	Currency      enums.Currency    `json:"currency"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	DeliveryDate  *time.Time        `json:"delivery_date,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	TailorID      uuid.UUID         `json:"tailor_id"`
	PendingStages int               `json:"pending_stages"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
