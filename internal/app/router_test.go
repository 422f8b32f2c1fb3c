package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ordelix/ordelix/internal/fulfillment"
	"github.com/ordelix/ordelix/internal/health"
	"github.com/ordelix/ordelix/internal/masterdata"
	"github.com/ordelix/ordelix/internal/observability"
	"github.com/ordelix/ordelix/internal/pricing"
	_ "github.com/ordelix/ordelix/internal/testing/guard"
	"github.com/ordelix/ordelix/jobs"
)

func testConfig() *Config {
	return &Config{
		AppEnv:            "test",
		StoreDriver:       StoreMemory,
		RateLimitPerMin:   1000,
		AnalyticsLimit:    100,
		PricingHourlyRate: pricing.DefaultHourlyRate,
	}
}

func newTestServer(t *testing.T) (http.Handler, *Services, *observability.Metrics) {
	t.Helper()
	cfg := testConfig()
	stores, err := OpenStores(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(stores.Close)

	metrics := observability.NewMetrics()
	services := BuildServices(cfg, stores, ServiceDeps{Metrics: metrics}, nil)
	_, err = services.Catalog.SeedDemoCatalog(context.Background())
	require.NoError(t, err)

	router := NewRouter(services.RouterParams(cfg, nil, metrics, jobs.NewHandler(nil, nil)))
	return router, services, metrics
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func productByName(t *testing.T, services *Services, name string) masterdata.Product {
	t.Helper()
	products, err := services.Catalog.ListProducts(context.Background())
	require.NoError(t, err)
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not seeded", name)
	return masterdata.Product{}
}

func TestRouterOrderFlow(t *testing.T) {
	router, services, _ := newTestServer(t)
	planter := productByName(t, services, "Hanging Planter")

	rr := do(t, router, http.MethodGet, "/api/pricing?productId="+planter.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var quote pricing.Recommendation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quote))
	require.Greater(t, quote.ProductionCost, 0.0)
	require.Greater(t, quote.Premium.Price, quote.Base.Price)

	rr = do(t, router, http.MethodGet, "/api/discounts?productId="+planter.ID+"&customerId=c2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/orders",
		`{"productId":"`+planter.ID+`","customerId":"c2","quantity":3,"originalPrice":120,"discount":10,"finalPrice":108}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var placed struct {
		Order   fulfillment.Order `json:"order"`
		Success bool              `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &placed))
	require.True(t, placed.Success)
	require.True(t, placed.Order.IsPreOrder, "cord stock of 8 cannot cover 3 x 3")

	rr = do(t, router, http.MethodPut, "/api/orders/"+placed.Order.ID+"/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/analytics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var report health.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	require.Equal(t, 1, report.Metrics.OrderCount)
	require.Equal(t, 1, report.Metrics.PreOrderCount)
	require.InDelta(t, 108.0, report.Metrics.Revenue, 0.001)

	rr = do(t, router, http.MethodGet, "/api/audit-logs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Order Placed")
	require.Contains(t, rr.Body.String(), "Order Status Updated")

	rr = do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `ordelix_orders_placed_total{pre_order="true"} 1`)
	require.Contains(t, rr.Body.String(), `ordelix_order_status_transitions_total{from="pending",to="completed"} 1`)
}

func TestRouterErrors(t *testing.T) {
	router, _, _ := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "pricing without product", method: http.MethodGet, path: "/api/pricing", status: http.StatusBadRequest},
		{name: "pricing unknown product", method: http.MethodGet, path: "/api/pricing?productId=nope", status: http.StatusNotFound},
		{name: "order unknown product", method: http.MethodPost, path: "/api/orders", body: `{"productId":"nope","customerId":"c1","quantity":1}`, status: http.StatusNotFound},
		{name: "order zero quantity", method: http.MethodPost, path: "/api/orders", body: `{"productId":"nope","customerId":"c1","quantity":0}`, status: http.StatusBadRequest},
		{name: "status unknown order", method: http.MethodPut, path: "/api/orders/nope/status", body: `{"status":"shipped"}`, status: http.StatusNotFound},
		{name: "status invalid value", method: http.MethodPut, path: "/api/orders/nope/status", body: `{"status":"lost"}`, status: http.StatusBadRequest},
		{name: "unknown route", method: http.MethodGet, path: "/api/nothing", status: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, router, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}

func TestRouterOperationalEndpoints(t *testing.T) {
	router, _, _ := newTestServer(t)

	rr := do(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/jobs/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"queue":"default"`)

	rr = do(t, router, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "VIP Bob")

	rr = do(t, router, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}
