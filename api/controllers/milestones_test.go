package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	internalmilestones "github.com/sew4mi/sew4mi-backend/internal/milestones"
	"github.com/sew4mi/sew4mi-backend/pkg/db/models"
	"github.com/sew4mi/sew4mi-backend/pkg/enums"
	pkgerrors "github.com/sew4mi/sew4mi-backend/pkg/errors"
)

type stubMilestonesService struct {
	submit func(ctx context.Context, input internalmilestones.SubmitDecisionInput) (*internalmilestones.DecisionResult, error)
	list   func(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) ([]models.Milestone, error)
}

func (s *stubMilestonesService) SubmitDecision(ctx context.Context, input internalmilestones.SubmitDecisionInput) (*internalmilestones.DecisionResult, error) {
	if s.submit != nil {
		return s.submit(ctx, input)
	}
	return &internalmilestones.DecisionResult{}, nil
}

func (s *stubMilestonesService) AutoApprove(ctx context.Context, milestoneID uuid.UUID) (*internalmilestones.DecisionResult, error) {
	return nil, nil
}

func (s *stubMilestonesService) ListOrderMilestones(ctx context.Context, orderID, actorUserID uuid.UUID, actorRole enums.UserRole) ([]models.Milestone, error) {
	if s.list != nil {
		return s.list(ctx, orderID, actorUserID, actorRole)
	}
	return nil, nil
}

func withMilestoneParams(req *http.Request, orderID, milestoneID uuid.UUID) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("orderId", orderID.String())
	ctx.URLParams.Add("milestoneId", milestoneID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestMilestoneDecisionApprove(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()
	milestoneID := uuid.New()
	called := false

	svc := &stubMilestonesService{
		submit: func(ctx context.Context, input internalmilestones.SubmitDecisionInput) (*internalmilestones.DecisionResult, error) {
			if input.OrderID != orderID || input.MilestoneID != milestoneID {
				t.Fatalf("unexpected ids %s %s", input.OrderID, input.MilestoneID)
			}
			if input.Decision != internalmilestones.DecisionApprove {
				t.Fatalf("unexpected decision %s", input.Decision)
			}
			if input.Comment == nil || *input.Comment != "looks great" {
				t.Fatalf("comment not carried")
			}
			if input.ActorUserID != actorID {
				t.Fatalf("unexpected actor %s", input.ActorUserID)
			}
			called = true
			return &internalmilestones.DecisionResult{PaymentTriggered: true}, nil
		},
	}

	body := `{"decision":"approve","comment":"looks great"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/milestones/"+milestoneID.String()+"/decision", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withMilestoneParams(req, orderID, milestoneID)
	req = withActor(req, actorID, enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	MilestoneDecision(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatalf("service not invoked")
	}
}

func TestMilestoneDecisionRejectsUnknownVerdict(t *testing.T) {
	orderID := uuid.New()
	milestoneID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/milestones/"+milestoneID.String()+"/decision", strings.NewReader(`{"decision":"maybe"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withMilestoneParams(req, orderID, milestoneID)
	req = withActor(req, uuid.New(), enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	MilestoneDecision(&stubMilestonesService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMilestoneDecisionMapsStateConflict(t *testing.T) {
	orderID := uuid.New()
	milestoneID := uuid.New()
	svc := &stubMilestonesService{
		submit: func(ctx context.Context, input internalmilestones.SubmitDecisionInput) (*internalmilestones.DecisionResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "milestone already reviewed")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/milestones/"+milestoneID.String()+"/decision", strings.NewReader(`{"decision":"approve"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withMilestoneParams(req, orderID, milestoneID)
	req = withActor(req, uuid.New(), enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	MilestoneDecision(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestOrderMilestonesList(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()

	svc := &stubMilestonesService{
		list: func(ctx context.Context, gotOrderID, actorUserID uuid.UUID, actorRole enums.UserRole) ([]models.Milestone, error) {
			if gotOrderID != orderID {
				t.Fatalf("unexpected order id %s", gotOrderID)
			}
			return []models.Milestone{{ID: uuid.New(), OrderID: orderID, Stage: enums.EscrowStageDeposit}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/milestones", nil)
	req = withOrderParam(req, orderID)
	req = withActor(req, actorID, enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	OrderMilestones(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "milestones") {
		t.Fatalf("payload missing milestones key: %s", resp.Body.String())
	}
}
