package enums

import "fmt"

// ApprovalAction maps to the approval_action_enum enum in Postgres. It records
// how a milestone reached its terminal status in the audit trail.
type ApprovalAction string

const (
	ApprovalActionApproved     ApprovalAction = "APPROVED"
	ApprovalActionRejected     ApprovalAction = "REJECTED"
	ApprovalActionAutoApproved ApprovalAction = "AUTO_APPROVED"
)

var validApprovalActions = []ApprovalAction{
	ApprovalActionApproved,
	ApprovalActionRejected,
	ApprovalActionAutoApproved,
}

// IsValid reports whether the value matches the canonical approval action enum.
func (a ApprovalAction) IsValid() bool {
	for _, candidate := range validApprovalActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseApprovalAction converts raw input into ApprovalAction.
func ParseApprovalAction(value string) (ApprovalAction, error) {
	for _, candidate := range validApprovalActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval action %q", value)
}
