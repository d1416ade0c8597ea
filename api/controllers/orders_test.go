package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alerodas/shoply-backend/api/middleware"
	internalorders "github.com/alerodas/shoply-backend/internal/orders"
	"github.com/alerodas/shoply-backend/pkg/enums"
)

type stubOrderService struct {
	createFn func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error)
	listFn   func(ctx context.Context, actorID uuid.UUID, role enums.Role) ([]internalorders.OrderDTO, error)
}

func (s *stubOrderService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error) {
	if s.createFn == nil {
		return nil, fmt.Errorf("unexpected Create call")
	}
	return s.createFn(ctx, input)
}

func (s *stubOrderService) List(ctx context.Context, actorID uuid.UUID, role enums.Role) ([]internalorders.OrderDTO, error) {
	if s.listFn == nil {
		return nil, fmt.Errorf("unexpected List call")
	}
	return s.listFn(ctx, actorID, role)
}

func (s *stubOrderService) Detail(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	return nil, fmt.Errorf("unexpected Detail call")
}

func (s *stubOrderService) MarkDelivered(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	return nil, fmt.Errorf("unexpected MarkDelivered call")
}

func (s *stubOrderService) Delete(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) error {
	return fmt.Errorf("unexpected Delete call")
}

func authedRequest(method, target string, body []byte, userID uuid.UUID, role enums.Role) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func TestCreateOrderForwardsPricedLines(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	orderID := uuid.New()

	var captured internalorders.CreateOrderInput
	svc := &stubOrderService{
		createFn: func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error) {
			captured = input
			return &internalorders.CreateOrderResult{
				OrderID:     orderID,
				TotalPrice:  decimal.RequireFromString("19.99"),
				RedirectURL: "https://checkout.stripe.com/pay/cs_test",
			}, nil
		},
	}

	body := fmt.Sprintf(`{
		"items": [{"product_id": %q, "qty": 2}],
		"shipping_address": {"street": "1 Main St", "city": "Armenia", "postal_code": "630001", "country": "CO"},
		"payment_method": "stripe"
	}`, productID)

	req := authedRequest(http.MethodPost, "/api/v1/orders", []byte(body), userID, enums.RoleUser)
	rec := httptest.NewRecorder()
	CreateOrder(svc, nil)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if captured.UserID != userID {
		t.Fatalf("expected actor from token, got %s", captured.UserID)
	}
	if len(captured.Lines) != 1 || captured.Lines[0].ProductID != productID || captured.Lines[0].Qty != 2 {
		t.Fatalf("unexpected cart lines %+v", captured.Lines)
	}
	if captured.PaymentMethod != enums.PaymentMethodStripe {
		t.Fatalf("unexpected payment method %s", captured.PaymentMethod)
	}

	var envelope struct {
		Data internalorders.CreateOrderResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.OrderID)
	}
	if envelope.Data.RedirectURL == "" {
		t.Fatalf("expected payment redirect url in response")
	}
}

func TestCreateOrderRejectsClientSuppliedPrices(t *testing.T) {
	svc := &stubOrderService{
		createFn: func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error) {
			t.Fatal("service must not be reached with a price-bearing payload")
			return nil, nil
		},
	}

	// Unknown fields like a client-asserted price are rejected outright.
	body := fmt.Sprintf(`{
		"items": [{"product_id": %q, "qty": 1, "price": "0.01"}],
		"shipping_address": {"street": "1 Main St", "city": "Armenia", "postal_code": "630001", "country": "CO"},
		"payment_method": "stripe"
	}`, uuid.New())

	req := authedRequest(http.MethodPost, "/api/v1/orders", []byte(body), uuid.New(), enums.RoleUser)
	rec := httptest.NewRecorder()
	CreateOrder(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCreateOrderRejectsUnknownPaymentMethod(t *testing.T) {
	svc := &stubOrderService{}
	body := fmt.Sprintf(`{
		"items": [{"product_id": %q, "qty": 1}],
		"shipping_address": {"street": "1 Main St", "city": "Armenia", "postal_code": "630001", "country": "CO"},
		"payment_method": "barter"
	}`, uuid.New())

	req := authedRequest(http.MethodPost, "/api/v1/orders", []byte(body), uuid.New(), enums.RoleUser)
	rec := httptest.NewRecorder()
	CreateOrder(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateOrderRequiresAuthContext(t *testing.T) {
	svc := &stubOrderService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	CreateOrder(svc, nil)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestListOrdersPassesActorAndRole(t *testing.T) {
	userID := uuid.New()
	var gotActor uuid.UUID
	var gotRole enums.Role
	svc := &stubOrderService{
		listFn: func(ctx context.Context, actorID uuid.UUID, role enums.Role) ([]internalorders.OrderDTO, error) {
			gotActor = actorID
			gotRole = role
			return []internalorders.OrderDTO{}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/orders", nil, userID, enums.RoleAdmin)
	rec := httptest.NewRecorder()
	ListOrders(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotActor != userID {
		t.Fatalf("expected actor %s, got %s", userID, gotActor)
	}
	if gotRole != enums.RoleAdmin {
		t.Fatalf("expected admin role, got %s", gotRole)
	}
}
