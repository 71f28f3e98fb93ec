package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

// Milestone is a customer-reviewable checkpoint of a garment order. It is
// created PENDING with an auto-approval deadline and transitions exactly once
// to APPROVED or REJECTED, either by customer decision or by the deadline
// sweep.
//
// Invariants enforced by the milestones service and the schema:
// rejection_reason is set iff the status is REJECTED, customer_reviewed_at is
// set iff the status is no longer PENDING, and terminal rows are never
// mutated again.
type Milestone struct {
	ID                   uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID              uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	Stage                enums.EscrowStage    `gorm:"column:stage;type:escrow_stage_enum;not null"`
	Name                 string               `gorm:"column:name;not null"`
	ApprovalStatus       enums.ApprovalStatus `gorm:"column:approval_status;type:approval_status_enum;not null;default:'PENDING'"`
	AutoApprovalDeadline time.Time            `gorm:"column:auto_approval_deadline;not null"`
	CustomerReviewedAt   *time.Time           `gorm:"column:customer_reviewed_at"`
	RejectionReason      *string              `gorm:"column:rejection_reason"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
