package enums

import "fmt"

// OrderStatus maps to the order_status_enum enum in Postgres.
type OrderStatus string

const (
	OrderStatusPendingDeposit OrderStatus = "pending_deposit"
	OrderStatusInProgress     OrderStatus = "in_progress"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingDeposit,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// IsValid reports whether the value matches the canonical order status enum.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
