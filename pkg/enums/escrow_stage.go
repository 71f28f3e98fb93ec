package enums

import "fmt"

// EscrowStage maps to the escrow_stage_enum enum in Postgres.
type EscrowStage string

const (
	EscrowStageDeposit  EscrowStage = "DEPOSIT"
	EscrowStageFitting  EscrowStage = "FITTING"
	EscrowStageFinal    EscrowStage = "FINAL"
	EscrowStageReleased EscrowStage = "RELEASED"
)

// escrowStageOrder lists the stages in their fixed progression.
var escrowStageOrder = []EscrowStage{
	EscrowStageDeposit,
	EscrowStageFitting,
	EscrowStageFinal,
	EscrowStageReleased,
}

// IsValid reports whether the value matches the canonical escrow stage enum.
func (s EscrowStage) IsValid() bool {
	for _, candidate := range escrowStageOrder {
		if candidate == s {
			return true
		}
	}
	return false
}

// Next returns the stage that follows s in the fixed progression. RELEASED is
// terminal and returns itself.
func (s EscrowStage) Next() (EscrowStage, error) {
	for i, candidate := range escrowStageOrder {
		if candidate != s {
			continue
		}
		if i == len(escrowStageOrder)-1 {
			return s, nil
		}
		return escrowStageOrder[i+1], nil
	}
	return "", fmt.Errorf("invalid escrow stage %q", s)
}

// ParseEscrowStage converts raw input into EscrowStage.
func ParseEscrowStage(value string) (EscrowStage, error) {
	for _, candidate := range escrowStageOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid escrow stage %q", value)
}
