package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sew4mi/sew4mi-backend/api/middleware"
	internalorders "github.com/sew4mi/sew4mi-backend/internal/orders"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	"github.com/sew4mi/sew4mi-backend/pkg/pagination"
	"github.com/sew4mi/sew4mi-backend/pkg/types"
)

type stubOrdersService struct {
	create func(ctx context.Context, input internalorders.CreateOrderInput) (*models.GarmentOrder, error)
	get    func(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) (*models.GarmentOrder, error)
	list   func(ctx context.Context, actorUserID uuid.UUID, actorRole enums.UserRole, status *enums.OrderStatus, params pagination.Params) (*internalorders.OrderList, error)
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, input internalorders.CreateOrderInput) (*models.GarmentOrder, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	return &models.GarmentOrder{ID: uuid.New()}, nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) (*models.GarmentOrder, error) {
	if s.get != nil {
		return s.get(ctx, orderID, actorUserID, actorRole)
	}
	return &models.GarmentOrder{ID: orderID}, nil
}

func (s *stubOrdersService) ListOrders(ctx context.Context, actorUserID uuid.UUID, actorRole enums.UserRole, status *enums.OrderStatus, params pagination.Params) (*internalorders.OrderList, error) {
	if s.list != nil {
		return s.list(ctx, actorUserID, actorRole, status, params)
	}
	return &internalorders.OrderList{}, nil
}

func withActor(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	return req.WithContext(middleware.WithRole(req.Context(), string(role)))
}

func withOrderParam(req *http.Request, orderID uuid.UUID) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestCreateOrderSuccess(t *testing.T) {
	customerID := uuid.New()
	tailorID := uuid.New()
	called := false

	svc := &stubOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*models.GarmentOrder, error) {
			if input.CustomerID != customerID {
				t.Fatalf("unexpected customer id %s", input.CustomerID)
			}
			if input.TailorID != tailorID {
				t.Fatalf("unexpected tailor id %s", input.TailorID)
			}
			if input.GarmentType != enums.GarmentTypeKaba {
				t.Fatalf("unexpected garment type %s", input.GarmentType)
			}
			if input.TotalAmount.String() != "250" {
				t.Fatalf("unexpected total %s", input.TotalAmount)
			}
			called = true
			return &models.GarmentOrder{ID: uuid.New(), CustomerID: customerID, TailorID: tailorID}, nil
		},
	}

	body := `{"tailor_id":"` + tailorID.String() + `","garment_type":"kaba","total_amount":"250"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, customerID, enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	CreateOrder(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatalf("service not invoked")
	}
}

func TestCreateOrderRejectsNonCustomer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"tailor_id":"`+uuid.NewString()+`","garment_type":"kaba","total_amount":"250"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleTailor)

	resp := httptest.NewRecorder()
	CreateOrder(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCreateOrderRejectsBadAmount(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"tailor_id":"`+uuid.NewString()+`","garment_type":"kaba","total_amount":"not-a-number"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	CreateOrder(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateOrderRequiresAuthContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	CreateOrder(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListOrdersParsesQuery(t *testing.T) {
	actorID := uuid.New()
	svc := &stubOrdersService{
		list: func(ctx context.Context, actorUserID uuid.UUID, actorRole enums.UserRole, status *enums.OrderStatus, params pagination.Params) (*internalorders.OrderList, error) {
			if actorUserID != actorID {
				t.Fatalf("unexpected actor id %s", actorUserID)
			}
			if actorRole != enums.UserRoleTailor {
				t.Fatalf("unexpected role %s", actorRole)
			}
			if params.Limit != 5 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if status == nil || *status != enums.OrderStatusInProgress {
				t.Fatalf("status filter not parsed")
			}
			return &internalorders.OrderList{Orders: []internalorders.OrderSummary{{OrderNumber: 7}}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5&status=in_progress", nil)
	req = withActor(req, actorID, enums.UserRoleTailor)

	resp := httptest.NewRecorder()
	ListOrders(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestListOrdersRejectsBadStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=bogus", nil)
	req = withActor(req, uuid.New(), enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	ListOrders(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderDetailParsesPathParam(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()
	svc := &stubOrdersService{
		get: func(ctx context.Context, gotOrderID, actorUserID uuid.UUID, actorRole enums.UserRole) (*models.GarmentOrder, error) {
			if gotOrderID != orderID {
				t.Fatalf("unexpected order id %s", gotOrderID)
			}
			return &models.GarmentOrder{ID: orderID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil)
	req = withOrderParam(req, orderID)
	req = withActor(req, actorID, enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	OrderDetail(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrderDetailRejectsMalformedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
	req = withActor(req, uuid.New(), enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	OrderDetail(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
