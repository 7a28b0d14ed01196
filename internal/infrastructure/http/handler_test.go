package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"
	"time"

	appCheckout "github.com/quantium/marketplace-checkout/internal/application/checkout"
	appInventory "github.com/quantium/marketplace-checkout/internal/application/inventory"
	appNotification "github.com/quantium/marketplace-checkout/internal/application/notification"
	appOnboarding "github.com/quantium/marketplace-checkout/internal/application/onboarding"
	"github.com/quantium/marketplace-checkout/internal/domain/catalog"
	"github.com/quantium/marketplace-checkout/internal/infrastructure/memory"
	"github.com/quantium/marketplace-checkout/internal/infrastructure/paymentsim"
	"github.com/quantium/marketplace-checkout/internal/pkg/signature"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const webhookSecret = "whsec_test"

func signTest(payload []byte) string {
	return signature.Sign(webhookSecret, payload, time.Now())
}

type testEnv struct {
	router  http.Handler
	catalog *memory.CatalogRepository
	gateway *paymentsim.Gateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	catalogRepo := memory.NewCatalogRepository()
	directory := memory.NewBusinessDirectory()
	gateway := paymentsim.NewGateway(paymentsim.Options{WebhookSecret: webhookSecret})

	checkoutSvc := appCheckout.NewService(catalogRepo, directory, gateway, appCheckout.Options{
		Currency:   "eur",
		SuccessURL: "https://shop.example.com/success",
		CancelURL:  "https://shop.example.com/cancel",
	})
	reconciler := appInventory.NewReconciler(catalogRepo, 0)
	notificationSvc := appNotification.NewService(webhookSecret, 5*time.Minute, reconciler)
	onboardingSvc := appOnboarding.NewService(directory, gateway, nil)

	handler := NewHandler(checkoutSvc, notificationSvc, onboardingSvc)
	observe := ObservabilityMiddleware(zap.NewNop(), nil, nil)

	return &testEnv{
		router:  observe(handler.Router()),
		catalog: catalogRepo,
		gateway: gateway,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body []byte, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postJSON(t *testing.T, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return e.do(t, http.MethodPost, target, raw, nil)
}

func (e *testEnv) seedProduct(t *testing.T, id, title, price string, supply int, owner string) {
	t.Helper()
	product, err := catalog.NewProduct(id, title, decimal.RequireFromString(price), supply, owner)
	require.NoError(t, err)
	require.NoError(t, e.catalog.Save(context.Background(), product))
}

func (e *testEnv) supplyOf(t *testing.T, id string) int {
	t.Helper()
	product, err := e.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return product.Supply
}

func (e *testEnv) registerBusiness(t *testing.T, email string) {
	t.Helper()
	rec := e.postJSON(t, "/business/register", map[string]string{
		"email":         email,
		"business_name": "Test Business",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCheckoutToReconciliationFlow(t *testing.T) {
	env := newTestEnv(t)
	env.registerBusiness(t, "biz@x.com")
	env.seedProduct(t, "p1", "Canvas Tote", "40", 10, "biz@x.com")

	rec := env.postJSON(t, "/checkout/session", map[string]any{
		"items": []map[string]any{{"id": "p1", "qty": 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		CheckoutURL string `json:"checkout_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.CheckoutURL)

	// The buyer pays; the gateway delivers the signed completion.
	sessionID := path.Base(created.CheckoutURL)
	payload, sigHeader, err := env.gateway.CompleteSession(sessionID)
	require.NoError(t, err)

	hook := env.do(t, http.MethodPost, "/webhook/payment", payload, http.Header{
		SignatureHeader: []string{sigHeader},
	})
	require.Equal(t, http.StatusOK, hook.Code, hook.Body.String())

	var hookResp struct {
		Received bool   `json:"received"`
		Outcome  string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(hook.Body.Bytes(), &hookResp))
	assert.True(t, hookResp.Received)
	assert.Equal(t, "reconciled", hookResp.Outcome)

	assert.Equal(t, 7, env.supplyOf(t, "p1"))
}

func TestCheckoutSessionErrors(t *testing.T) {
	env := newTestEnv(t)
	env.registerBusiness(t, "biz@x.com")
	env.seedProduct(t, "p1", "Canvas Tote", "40", 10, "biz@x.com")

	cases := []struct {
		name string
		body any
		want int
	}{
		{"empty cart", map[string]any{"items": []any{}}, http.StatusBadRequest},
		{"unknown product", map[string]any{"items": []map[string]any{{"id": "ghost", "qty": 1}}}, http.StatusNotFound},
		{"insufficient stock", map[string]any{"items": []map[string]any{{"id": "p1", "qty": 11}}}, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.postJSON(t, "/checkout/session", tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, 10, env.supplyOf(t, "p1"))
}

func TestCheckoutSessionMalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/checkout/session", []byte("{not json"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookInvalidSignature(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "p1", "Canvas Tote", "40", 10, "biz@x.com")

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"items":"[{\"id\":\"p1\",\"qty\":3}]"}}}}`)

	rec := env.do(t, http.MethodPost, "/webhook/payment", payload, http.Header{
		SignatureHeader: []string{"t=1,v1=deadbeef"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 10, env.supplyOf(t, "p1"))
}

func TestWebhookIgnoredEventType(t *testing.T) {
	env := newTestEnv(t)
	env.registerBusiness(t, "biz@x.com")
	env.seedProduct(t, "p1", "Canvas Tote", "40", 10, "biz@x.com")

	// Create a real session, then rewrite the event type before signing.
	rec := env.postJSON(t, "/checkout/session", map[string]any{
		"items": []map[string]any{{"id": "p1", "qty": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	payload := []byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{"id":"cs_1","metadata":{}}}}`)
	hook := env.do(t, http.MethodPost, "/webhook/payment", payload, http.Header{
		SignatureHeader: []string{signTest(payload)},
	})
	require.Equal(t, http.StatusOK, hook.Code)
	assert.Contains(t, hook.Body.String(), "ignored")
	assert.Equal(t, 10, env.supplyOf(t, "p1"))
}

func TestWebhookReconcileFailureAnswers500(t *testing.T) {
	env := newTestEnv(t)
	env.registerBusiness(t, "biz@x.com")
	env.seedProduct(t, "p1", "Canvas Tote", "40", 3, "biz@x.com")

	rec := env.postJSON(t, "/checkout/session", map[string]any{
		"items": []map[string]any{{"id": "p1", "qty": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		CheckoutURL string `json:"checkout_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	sessionID := path.Base(created.CheckoutURL)

	payload, sigHeader, err := env.gateway.CompleteSession(sessionID)
	require.NoError(t, err)

	// First delivery settles, draining the stock below the order quantity.
	first := env.do(t, http.MethodPost, "/webhook/payment", payload, http.Header{
		SignatureHeader: []string{sigHeader},
	})
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, env.supplyOf(t, "p1"))

	// The duplicated delivery finds insufficient stock and reports 500.
	second := env.do(t, http.MethodPost, "/webhook/payment", payload, http.Header{
		SignatureHeader: []string{sigHeader},
	})
	assert.Equal(t, http.StatusInternalServerError, second.Code)
	assert.Equal(t, 1, env.supplyOf(t, "p1"))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
