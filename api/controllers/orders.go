package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sew4mi/sew4mi-backend/api/middleware"
	"github.com/sew4mi/sew4mi-backend/api/responses"
	"github.com/sew4mi/sew4mi-backend/api/validators"
	internalorders "github.com/sew4mi/sew4mi-backend/internal/orders"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
	"github.com/sew4mi/sew4mi-backend/pkg/pagination"
)

const maxDescriptionLen = 2000

type createOrderRequest struct {
	TailorID     string  `json:"tailor_id" validate:"required,uuid"`
	GarmentType  string  `json:"garment_type" validate:"required"`
	Description  *string `json:"description,omitempty"`
	TotalAmount  string  `json:"total_amount" validate:"required"`
	DeliveryDate *string `json:"delivery_date,omitempty"`
}

// actorFromRequest resolves the authenticated user id and role injected by
// the auth middleware.
func actorFromRequest(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	rawUser := middleware.UserIDFromContext(r.Context())
	if rawUser == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	actorID, err := uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown actor role")
	}
	return actorID, role, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

// CreateOrder commissions a garment for the authenticated customer.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if role != enums.UserRoleCustomer {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "only customers can commission orders"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tailorID, err := uuid.Parse(payload.TailorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tailor id"))
			return
		}

		garmentType, err := enums.ParseGarmentType(payload.GarmentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid garment type"))
			return
		}

		total, err := decimal.NewFromString(payload.TotalAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "total amount must be a decimal string"))
			return
		}

		var deliveryDate *time.Time
		if payload.DeliveryDate != nil {
			parsed, err := time.Parse(time.RFC3339, *payload.DeliveryDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "delivery date must be RFC3339"))
				return
			}
			deliveryDate = &parsed
		}

		var description *string
		if payload.Description != nil {
			if cleaned := validators.SanitizeString(*payload.Description, maxDescriptionLen); cleaned != "" {
				description = &cleaned
			}
		}

		input := internalorders.CreateOrderInput{
			CustomerID:   actorID,
			TailorID:     tailorID,
			GarmentType:  garmentType,
			Description:  description,
			TotalAmount:  total,
			DeliveryDate: deliveryDate,
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the page of orders visible to the authenticated actor.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var status *enums.OrderStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		list, err := svc.ListOrders(r.Context(), actorID, role, status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns one order with its milestones after an ownership check.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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

		order, err := svc.GetOrder(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
