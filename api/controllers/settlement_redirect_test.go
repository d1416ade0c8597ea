package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alerodas/shoply-backend/internal/settlement"
	"github.com/alerodas/shoply-backend/pkg/config"
	pkgerrors "github.com/alerodas/shoply-backend/pkg/errors"
)

type stubSettler struct {
	outcome *settlement.Outcome
	err     error

	gotSession string
	gotChannel string
}

func (s *stubSettler) Settle(_ context.Context, sessionID, channel string) (*settlement.Outcome, error) {
	s.gotSession = sessionID
	s.gotChannel = channel
	return s.outcome, s.err
}

func checkoutTestConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		FrontendOrigin: "https://shop.example.com",
		APIOrigin:      "https://api.example.com",
		Currency:       "usd",
	}
}

func serveRedirect(t *testing.T, settler Settler, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Get("/api/v1/orders/success/{sessionId}", CheckoutSuccess(settler, checkoutTestConfig(), nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/success/"+sessionID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutSuccessRedirectsToOrder(t *testing.T) {
	orderID := uuid.New()
	settler := &stubSettler{outcome: &settlement.Outcome{OrderID: orderID}}

	rec := serveRedirect(t, settler, "cs_test_123")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	want := "https://shop.example.com/order/" + orderID.String()
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("expected redirect to %s, got %s", want, got)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected Cache-Control no-store")
	}
	if settler.gotChannel != settlement.ChannelRedirect {
		t.Fatalf("expected redirect channel, got %s", settler.gotChannel)
	}
	if settler.gotSession != "cs_test_123" {
		t.Fatalf("expected session forwarded, got %s", settler.gotSession)
	}
}

func TestCheckoutSuccessDuplicateStillRedirectsToOrder(t *testing.T) {
	orderID := uuid.New()
	settler := &stubSettler{outcome: &settlement.Outcome{OrderID: orderID, AlreadySettled: true}}

	rec := serveRedirect(t, settler, "cs_test_dup")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	want := "https://shop.example.com/order/" + orderID.String()
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("duplicate settlement must still land on the order page, got %s", got)
	}
}

func TestCheckoutSuccessUnpaidSessionRedirectsToPaymentFailed(t *testing.T) {
	settler := &stubSettler{err: pkgerrors.New(pkgerrors.CodeStateConflict, "payment not completed")}

	rec := serveRedirect(t, settler, "cs_test_unpaid")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	want := "https://shop.example.com/checkout?error=payment_failed"
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCheckoutSuccessVerificationFailureRedirectsToServerError(t *testing.T) {
	settler := &stubSettler{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("timeout"), "verify session")}

	rec := serveRedirect(t, settler, "cs_test_down")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	want := "https://shop.example.com/checkout?error=server_error"
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
