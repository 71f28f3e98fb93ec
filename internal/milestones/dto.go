package milestones

import (
	"github.com/google/uuid"

	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
)

// Decision represents the verdict a customer can submit for a milestone.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// SubmitDecisionInput captures the data required to resolve a pending milestone.
type SubmitDecisionInput struct {
	OrderID     uuid.UUID
	MilestoneID uuid.UUID
	Decision    Decision
	Comment     *string
	Reason      *string
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// DecisionResult reports the outcome of a decision or an auto-approval. The
// milestone and approval reflect the committed state; PaymentTriggered is
// false when the post-commit tranche release did not succeed, which never
// invalidates the approval itself.
type DecisionResult struct {
	Milestone        models.Milestone         `json:"milestone"`
	Approval         models.MilestoneApproval `json:"approval"`
	OrderStatus      enums.OrderStatus        `json:"order_status"`
	OrderEscrowStage enums.EscrowStage        `json:"order_escrow_stage"`
	PaymentTriggered bool                     `json:"payment_triggered"`

	// order snapshot carried for the post-commit tranche release.
	order models.GarmentOrder
}
