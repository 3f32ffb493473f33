package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/usecase"
)

type fakeEntitlements struct {
	activated []string
}

var _ usecase.EntitlementUseCase = (*fakeEntitlements)(nil)

func (f *fakeEntitlements) Reload(ctx context.Context, userID, email string) (*model.UserSubscription, error) {
	return &model.UserSubscription{UserID: userID}, nil
}

func (f *fakeEntitlements) ActivatePremium(ctx context.Context, userID string) error {
	f.activated = append(f.activated, userID)
	return nil
}

func (f *fakeEntitlements) Renew(ctx context.Context, userID string) error { return nil }

func (f *fakeEntitlements) RenewDue(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func (f *fakeEntitlements) CheckRenewal(p *model.UserProfile, now time.Time) bool {
	return p.NeedsRenewal(model.DefaultQuotaPolicy(), now)
}

const testSecret = "test-webhook-secret"

func newTestServer(t *testing.T) (*httptest.Server, *fakeEntitlements) {
	t.Helper()
	ents := &fakeEntitlements{}
	logger := zerolog.Nop()
	ts := httptest.NewServer(NewServer(ents, testSecret, &logger).Router())
	t.Cleanup(ts.Close)
	return ts, ents
}

func postWebhook(t *testing.T, ts *httptest.Server, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/payments/webhook", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestWebhook_ActivatesPremiumWithValidToken(t *testing.T) {
	ts, ents := newTestServer(t)

	token, err := MintWebhookToken([]byte(testSecret), "u1", EventPaymentSucceeded, time.Minute)
	if err != nil {
		t.Fatalf("MintWebhookToken: %v", err)
	}
	resp := postWebhook(t, ts, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(ents.activated) != 1 || ents.activated[0] != "u1" {
		t.Fatalf("expected activation for u1, got %+v", ents.activated)
	}
}

func TestWebhook_RejectsForgedToken(t *testing.T) {
	ts, ents := newTestServer(t)

	token, err := MintWebhookToken([]byte("wrong-secret"), "u1", EventPaymentSucceeded, time.Minute)
	if err != nil {
		t.Fatalf("MintWebhookToken: %v", err)
	}
	resp := postWebhook(t, ts, token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if len(ents.activated) != 0 {
		t.Fatal("forged token must not activate premium")
	}
}

func TestWebhook_RejectsMissingToken(t *testing.T) {
	ts, ents := newTestServer(t)

	resp := postWebhook(t, ts, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if len(ents.activated) != 0 {
		t.Fatal("missing token must not activate premium")
	}
}

func TestWebhook_RejectsExpiredToken(t *testing.T) {
	ts, ents := newTestServer(t)

	token, err := MintWebhookToken([]byte(testSecret), "u1", EventPaymentSucceeded, -time.Minute)
	if err != nil {
		t.Fatalf("MintWebhookToken: %v", err)
	}
	resp := postWebhook(t, ts, token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if len(ents.activated) != 0 {
		t.Fatal("expired token must not activate premium")
	}
}

func TestWebhook_IgnoresOtherEvents(t *testing.T) {
	ts, ents := newTestServer(t)

	token, err := MintWebhookToken([]byte(testSecret), "u1", "invoice_created", time.Minute)
	if err != nil {
		t.Fatalf("MintWebhookToken: %v", err)
	}
	resp := postWebhook(t, ts, token)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if len(ents.activated) != 0 {
		t.Fatal("non-payment event must not activate premium")
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
