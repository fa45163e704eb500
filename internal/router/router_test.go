package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"order-service/internal/handler"
	"order-service/internal/metrics"
	"order-service/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "router-test-key"

// stubOrders serves a single known order and records the last actor.
type stubOrders struct {
	lastActor string
}

func (s *stubOrders) CreateOrder(context.Context, *model.OrderRequest) (*model.OrderResponse, error) {
	return model.NewOrderResponse(&model.Order{OrderNumber: "ORD-1"}), nil
}

func (s *stubOrders) GetOrder(_ context.Context, orderNumber string) (*model.OrderResponse, error) {
	if orderNumber != "ORD-1" {
		return nil, nil
	}
	return model.NewOrderResponse(&model.Order{OrderNumber: orderNumber}), nil
}

func (s *stubOrders) ListOrdersByEmail(context.Context, string, int, int) ([]model.OrderResponse, error) {
	return []model.OrderResponse{}, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, c *model.StatusChange) (*model.OrderResponse, error) {
	s.lastActor = c.Actor
	return model.NewOrderResponse(&model.Order{OrderNumber: c.OrderNumber, Status: c.Status}), nil
}

func (s *stubOrders) AddTracking(_ context.Context, u *model.TrackingUpdate) (*model.OrderResponse, error) {
	s.lastActor = u.Actor
	return model.NewOrderResponse(&model.Order{OrderNumber: u.OrderNumber}), nil
}

func (s *stubOrders) CancelOrder(_ context.Context, c *model.StatusChange) (*model.OrderResponse, error) {
	s.lastActor = c.Actor
	return model.NewOrderResponse(&model.Order{OrderNumber: c.OrderNumber, Status: model.StatusCancelled}), nil
}

type stubAnalytics struct{}

func (stubAnalytics) Summary(context.Context, *model.Window) (*model.Summary, error) {
	return &model.Summary{}, nil
}

func (stubAnalytics) TopProducts(context.Context, *model.Window, int) ([]model.ProductStat, error) {
	return []model.ProductStat{}, nil
}

func (stubAnalytics) Dashboard(context.Context, *model.Window, int) (*model.Dashboard, error) {
	return &model.Dashboard{Summary: &model.Summary{}}, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter(orders *stubOrders) http.Handler {
	logger := zerolog.Nop()
	registry := metrics.New()

	return New(Handlers{
		Orders:    handler.NewOrderHandler(orders, logger),
		Analytics: handler.NewAnalyticsHandler(stubAnalytics{}, logger),
		Health:    handler.NewHealthHandler(okPinger{}, logger),
		Metrics:   registry.Handler(),
	}, registry, testAPIKey, logger)
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		apiKey         string
		expectedStatus int
	}{
		{name: "Health without key", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "Metrics without key", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "Order requires key", method: http.MethodGet, path: "/api/orders/ORD-1", expectedStatus: http.StatusUnauthorized},
		{name: "Get order", method: http.MethodGet, path: "/api/orders/ORD-1", apiKey: testAPIKey, expectedStatus: http.StatusOK},
		{name: "Missing order", method: http.MethodGet, path: "/api/orders/ORD-2", apiKey: testAPIKey, expectedStatus: http.StatusNotFound},
		{name: "Create order", method: http.MethodPost, path: "/api/orders", body: `{}`, apiKey: testAPIKey, expectedStatus: http.StatusCreated},
		{name: "List orders", method: http.MethodGet, path: "/api/orders?email=a@example.com", apiKey: testAPIKey, expectedStatus: http.StatusOK},
		{name: "Update status", method: http.MethodPatch, path: "/api/orders/ORD-1/status", body: `{"status":"confirmed"}`, apiKey: testAPIKey, expectedStatus: http.StatusOK},
		{name: "Add tracking", method: http.MethodPost, path: "/api/orders/ORD-1/tracking", body: `{"trackingNumber":"T-1"}`, apiKey: testAPIKey, expectedStatus: http.StatusOK},
		{name: "Cancel", method: http.MethodPost, path: "/api/orders/ORD-1/cancel", apiKey: testAPIKey, expectedStatus: http.StatusOK},
		{name: "Summary", method: http.MethodGet, path: "/api/analytics/summary", apiKey: testAPIKey, expectedStatus: http.StatusOK},
		{name: "Top products", method: http.MethodGet, path: "/api/analytics/top-products?limit=3", apiKey: testAPIKey, expectedStatus: http.StatusOK},
		{name: "Dashboard", method: http.MethodGet, path: "/api/analytics/dashboard", apiKey: testAPIKey, expectedStatus: http.StatusOK},
		{name: "Wrong method", method: http.MethodDelete, path: "/api/orders/ORD-1", apiKey: testAPIKey, expectedStatus: http.StatusMethodNotAllowed},
		{name: "Unknown path", method: http.MethodGet, path: "/api/products", apiKey: testAPIKey, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubOrders{})

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRouter_PropagatesActorAndRequestID(t *testing.T) {
	orders := &stubOrders{}
	router := newTestRouter(orders)

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/ORD-1/status", strings.NewReader(`{"status":"shipped"}`))
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("X-Actor-ID", "ops-3")
	req.Header.Set("X-Request-Id", "req-abc")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops-3", orders.lastActor)
}

func TestRouter_RecordsRequestMetrics(t *testing.T) {
	router := newTestRouter(&stubOrders{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-1", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	router.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/orders/{orderNumber}"`)
	assert.NotContains(t, w.Body.String(), "ORD-1")
}
