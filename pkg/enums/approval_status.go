package enums

import "fmt"

// ApprovalStatus maps to the approval_status_enum enum in Postgres.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
}

// IsValid reports whether the value matches the canonical approval status enum.
func (s ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// ParseApprovalStatus converts raw input into ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}
