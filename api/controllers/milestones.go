package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sew4mi/sew4mi-backend/api/responses"
	"github.com/sew4mi/sew4mi-backend/api/validators"
	internalmilestones "github.com/sew4mi/sew4mi-backend/internal/milestones"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
)

const (
	maxCommentLen = 1000
	maxReasonLen  = 1000
)

type milestoneDecisionRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approve reject"`
	Comment  *string `json:"comment,omitempty"`
	Reason   *string `json:"reason,omitempty"`
}

func parseMilestoneID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "milestoneId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "milestone id is required")
	}
	milestoneID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid milestone id")
	}
	return milestoneID, nil
}

// MilestoneDecision applies the customer's approve or reject verdict to a
// pending milestone.
func MilestoneDecision(svc internalmilestones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "milestones service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		milestoneID, err := parseMilestoneID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload milestoneDecisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalmilestones.SubmitDecisionInput{
			OrderID:     orderID,
			MilestoneID: milestoneID,
			Decision:    internalmilestones.Decision(payload.Decision),
			ActorUserID: actorID,
			ActorRole:   role,
		}
		if payload.Comment != nil {
			if cleaned := validators.SanitizeString(*payload.Comment, maxCommentLen); cleaned != "" {
				input.Comment = &cleaned
			}
		}
		if payload.Reason != nil {
			if cleaned := validators.SanitizeString(*payload.Reason, maxReasonLen); cleaned != "" {
				input.Reason = &cleaned
			}
		}

		result, err := svc.SubmitDecision(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OrderMilestones lists the checkpoints of one order in stage order.
func OrderMilestones(svc internalmilestones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "milestones service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		milestones, err := svc.ListOrderMilestones(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"milestones": milestones})
	}
}
