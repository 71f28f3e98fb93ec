package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

// MilestoneApproval records an immutable audit entry for a milestone's
// terminal transition. A nil actor means the system performed the transition
// (deadline auto-approval). Rows are appended once and never updated.
type MilestoneApproval struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MilestoneID uuid.UUID            `gorm:"column:milestone_id;type:uuid;not null"`
	OrderID     uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	ActorUserID *uuid.UUID           `gorm:"column:actor_user_id;type:uuid"`
	Action      enums.ApprovalAction `gorm:"column:action;type:approval_action_enum;not null"`
	Comment     *string              `gorm:"column:comment"`
	ReviewedAt  time.Time            `gorm:"column:reviewed_at;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
