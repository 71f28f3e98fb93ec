package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	internalmilestones "github.com/sew4mi/sew4mi-backend/internal/milestones"
	internalorders "github.com/sew4mi/sew4mi-backend/internal/orders"
	pkgauth "github.com/sew4mi/sew4mi-backend/pkg/auth"
	"github.com/sew4mi/sew4mi-backend/pkg/config"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
	"github.com/sew4mi/sew4mi-backend/pkg/pagination"
	"github.com/rs/zerolog"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrdersService struct {
	list func(ctx context.Context, actorUserID uuid.UUID, actorRole enums.UserRole, status *enums.OrderStatus, params pagination.Params) (*internalorders.OrderList, error)
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, input internalorders.CreateOrderInput) (*models.GarmentOrder, error) {
	return &models.GarmentOrder{ID: uuid.New()}, nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) (*models.GarmentOrder, error) {
	return &models.GarmentOrder{ID: orderID}, nil
}

func (s *stubOrdersService) ListOrders(ctx context.Context, actorUserID uuid.UUID, actorRole enums.UserRole, status *enums.OrderStatus, params pagination.Params) (*internalorders.OrderList, error) {
	if s.list != nil {
		return s.list(ctx, actorUserID, actorRole, status, params)
	}
	return &internalorders.OrderList{}, nil
}

type stubMilestonesService struct{}

func (stubMilestonesService) SubmitDecision(ctx context.Context, input internalmilestones.SubmitDecisionInput) (*internalmilestones.DecisionResult, error) {
	return &internalmilestones.DecisionResult{}, nil
}

func (stubMilestonesService) AutoApprove(ctx context.Context, milestoneID uuid.UUID) (*internalmilestones.DecisionResult, error) {
	return nil, nil
}

func (stubMilestonesService) ListOrderMilestones(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) ([]models.Milestone, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "sew4mi-test",
			ExpirationMinutes: 15,
		},
	}
}

func testRouterLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "router-test",
		Level:       zerolog.ErrorLevel,
		Output:      io.Discard,
	})
}

func mintToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	return NewRouter(cfg, testRouterLogger(), stubPinger{}, nil, &stubOrdersService{}, stubMilestonesService{})
}

func TestHealthLive(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Sew4Mi-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestPublicPingNeedsNoAuth(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrdersListWithBearerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestEscrowQuoteRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/escrow/quote", strings.NewReader(`{"total_amount":"300"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "150") {
		t.Fatalf("fitting tranche missing from payload: %s", resp.Body.String())
	}
}

func TestMilestoneDecisionRouteReachesService(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	orderID := uuid.New()
	milestoneID := uuid.New()
	body := `{"decision":"approve"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/milestones/"+milestoneID.String()+"/decision", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
