package escrow

import (
	"github.com/shopspring/decimal"

	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
)

// Tranche percentages are fixed across the marketplace: a quarter up front,
// half at fitting, the balance on delivery.
var (
	DepositPercentage = decimal.NewFromFloat(0.25)
	FittingPercentage = decimal.NewFromFloat(0.50)
	FinalPercentage   = decimal.NewFromFloat(0.25)

	driftTolerance = decimal.NewFromFloat(0.01)
)

// Breakdown is the escrow split of an order total into the three tranches.
// Deposit and fitting are rounded to pesewas; the final tranche is the exact
// remainder, so the three always sum back to the rounded total.
type Breakdown struct {
	Total   decimal.Decimal `json:"total"`
	Deposit decimal.Decimal `json:"deposit"`
	Fitting decimal.Decimal `json:"fitting"`
	Final   decimal.Decimal `json:"final"`

	DepositPercentage decimal.Decimal `json:"deposit_percentage"`
	FittingPercentage decimal.Decimal `json:"fitting_percentage"`
	FinalPercentage   decimal.Decimal `json:"final_percentage"`
}

// CalculateBreakdown splits total into the 25/50/25 escrow tranches.
func CalculateBreakdown(total decimal.Decimal) (*Breakdown, error) {
	if !total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "escrow total must be greater than zero")
	}

	rounded := total.Round(2)
	if !rounded.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "escrow total must be greater than zero")
	}

	deposit := rounded.Mul(DepositPercentage).Round(2)
	fitting := rounded.Mul(FittingPercentage).Round(2)
	final := rounded.Sub(deposit).Sub(fitting)

	b := &Breakdown{
		Total:             rounded,
		Deposit:           deposit,
		Fitting:           fitting,
		Final:             final,
		DepositPercentage: DepositPercentage,
		FittingPercentage: FittingPercentage,
		FinalPercentage:   FinalPercentage,
	}

	if !ValidateBreakdown(b) {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "escrow breakdown does not sum to total")
	}
	return b, nil
}

// StageAmount returns the tranche released at the given escrow stage.
// RELEASED has no tranche of its own and always yields zero.
func StageAmount(total decimal.Decimal, stage enums.EscrowStage) (decimal.Decimal, error) {
	if stage == enums.EscrowStageReleased {
		return decimal.Zero, nil
	}

	b, err := CalculateBreakdown(total)
	if err != nil {
		return decimal.Zero, err
	}

	switch stage {
	case enums.EscrowStageDeposit:
		return b.Deposit, nil
	case enums.EscrowStageFitting:
		return b.Fitting, nil
	case enums.EscrowStageFinal:
		return b.Final, nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown escrow stage")
	}
}

// ValidateBreakdown reports whether the tranches are all non-negative and sum
// back to the total within a pesewa.
func ValidateBreakdown(b *Breakdown) bool {
	if b == nil {
		return false
	}
	if b.Deposit.IsNegative() || b.Fitting.IsNegative() || b.Final.IsNegative() {
		return false
	}
	sum := b.Deposit.Add(b.Fitting).Add(b.Final)
	return sum.Sub(b.Total).Abs().LessThanOrEqual(driftTolerance)
}
