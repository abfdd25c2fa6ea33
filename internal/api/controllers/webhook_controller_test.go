package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockWebhookService struct {
	VerifyEventFunc func(payload []byte, signature string) (stripe.Event, error)
	HandleEventFunc func(ctx context.Context, event stripe.Event, payload []byte) error
	handled         int
}

func (m *MockWebhookService) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	return m.VerifyEventFunc(payload, signature)
}

func (m *MockWebhookService) HandleEvent(ctx context.Context, event stripe.Event, payload []byte) error {
	m.handled++
	if m.HandleEventFunc != nil {
		return m.HandleEventFunc(ctx, event, payload)
	}
	return nil
}

func serveWebhook(svc *MockWebhookService, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/webhook", NewWebhookController(svc, zap.NewNop()).HandleStripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleStripeWebhook_BadSignature(t *testing.T) {
	svc := &MockWebhookService{
		VerifyEventFunc: func([]byte, string) (stripe.Event, error) {
			return stripe.Event{}, errors.New("no signatures found matching the expected signature for payload")
		},
	}

	w := serveWebhook(svc, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if want := "Webhook Error: no signatures found matching the expected signature for payload"; w.Body.String() != want {
		t.Errorf("body = %q, want %q", w.Body.String(), want)
	}
	if svc.handled != 0 {
		t.Error("handler must not run for an unverified payload")
	}
}

func TestHandleStripeWebhook_PassesRawBody(t *testing.T) {
	const body = `{"id":"evt_1","type":"payment_intent.succeeded"}`
	var gotPayload, gotSig string
	svc := &MockWebhookService{
		VerifyEventFunc: func(payload []byte, sig string) (stripe.Event, error) {
			gotPayload, gotSig = string(payload), sig
			return stripe.Event{ID: "evt_1", Type: "payment_intent.succeeded"}, nil
		},
	}

	w := serveWebhook(svc, body)
	if w.Code != http.StatusOK || w.Body.String() != `{"received":true}` {
		t.Fatalf("response = %d %s", w.Code, w.Body.String())
	}
	if gotPayload != body || gotSig != "t=1,v1=abc" {
		t.Errorf("verifier got payload %q sig %q", gotPayload, gotSig)
	}
	if svc.handled != 1 {
		t.Errorf("handled = %d, want 1", svc.handled)
	}
}

func TestHandleStripeWebhook_HandlerError(t *testing.T) {
	svc := &MockWebhookService{
		VerifyEventFunc: func([]byte, string) (stripe.Event, error) {
			return stripe.Event{ID: "evt_1", Type: "payment_intent.succeeded"}, nil
		},
		HandleEventFunc: func(context.Context, stripe.Event, []byte) error {
			return errors.New("mark tip paid: db down")
		},
	}

	w := serveWebhook(svc, `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Body.String() != `{"error":"mark tip paid: db down"}` {
		t.Errorf("body = %s", w.Body.String())
	}
}
