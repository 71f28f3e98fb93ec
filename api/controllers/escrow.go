package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sew4mi/sew4mi-backend/api/responses"
	"github.com/sew4mi/sew4mi-backend/api/validators"
	"github.com/sew4mi/sew4mi-backend/internal/escrow"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
)

type escrowQuoteRequest struct {
	TotalAmount string `json:"total_amount" validate:"required"`
}

// EscrowQuote computes the tranche breakdown for a prospective order total
// without persisting anything.
func EscrowQuote(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload escrowQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		total, err := decimal.NewFromString(payload.TotalAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "total amount must be a decimal string"))
			return
		}

		breakdown, err := escrow.CalculateBreakdown(total)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, breakdown)
	}
}
