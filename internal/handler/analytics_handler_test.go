package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order-service/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsService is a mock implementation of AnalyticsService.
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Summary(ctx context.Context, window *model.Window) (*model.Summary, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Summary), args.Error(1)
}

func (m *MockAnalyticsService) TopProducts(ctx context.Context, window *model.Window, limit int) ([]model.ProductStat, error) {
	args := m.Called(ctx, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductStat), args.Error(1)
}

func (m *MockAnalyticsService) Dashboard(ctx context.Context, window *model.Window, limit int) (*model.Dashboard, error) {
	args := m.Called(ctx, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dashboard), args.Error(1)
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		query          string
		expectService  bool
		expectedWindow *model.Window
		mockError      error
		expectedStatus int
		expectedFields []string
	}{
		{
			name:           "Default window",
			query:          "",
			expectService:  true,
			expectedWindow: nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Explicit window",
			query:          "?start=2026-04-01T00:00:00Z&end=2026-04-30T00:00:00Z",
			expectService:  true,
			expectedWindow: &model.Window{Start: start, End: end},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Inverted window",
			query:          "?start=2026-04-30T00:00:00Z&end=2026-04-01T00:00:00Z",
			expectService:  true,
			expectedWindow: &model.Window{Start: end, End: start},
			mockError:      model.ErrInvalidWindow,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Only start",
			query:          "?start=2026-04-01T00:00:00Z",
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"end"},
		},
		{
			name:           "Malformed timestamps",
			query:          "?start=yesterday&end=2026-04-30",
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"start", "end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAnalyticsService)
			handler := NewAnalyticsHandler(mockService, zerolog.Nop())

			if tt.expectService {
				var ret *model.Summary
				if tt.mockError == nil {
					ret = &model.Summary{TotalOrders: 12, TotalRevenue: decimal.RequireFromString("1450.50")}
				}
				mockService.On("Summary", mock.Anything, tt.expectedWindow).Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.Summary(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedFields != nil {
				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				fields := make([]string, len(resp.Fields))
				for i, f := range resp.Fields {
					fields[i] = f.Field
				}
				assert.Equal(t, tt.expectedFields, fields)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestAnalyticsHandler_TopProducts(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectService  bool
		limit          int
		mockError      error
		expectedStatus int
	}{
		{name: "Default limit", query: "", expectService: true, limit: 0, expectedStatus: http.StatusOK},
		{name: "Explicit limit", query: "?limit=3", expectService: true, limit: 3, expectedStatus: http.StatusOK},
		{name: "Negative limit", query: "?limit=-2", expectService: true, limit: -2, mockError: model.NewValidationError("limit", "cannot be negative"), expectedStatus: http.StatusBadRequest},
		{name: "Non-numeric limit", query: "?limit=many", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAnalyticsService)
			handler := NewAnalyticsHandler(mockService, zerolog.Nop())

			if tt.expectService {
				var ret []model.ProductStat
				if tt.mockError == nil {
					ret = []model.ProductStat{{ProductRef: "P001", TotalQuantity: 9}}
				}
				mockService.On("TopProducts", mock.Anything, (*model.Window)(nil), tt.limit).Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/analytics/top-products"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.TopProducts(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAnalyticsHandler_Dashboard(t *testing.T) {
	mockService := new(MockAnalyticsService)
	handler := NewAnalyticsHandler(mockService, zerolog.Nop())

	mockService.On("Dashboard", mock.Anything, mock.MatchedBy(func(w *model.Window) bool {
		return w != nil && w.Start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	}), 5).Return(&model.Dashboard{
		Summary:     &model.Summary{TotalOrders: 2},
		TopProducts: []model.ProductStat{{ProductRef: "A"}},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard?start=2026-01-01T00:00:00Z&end=2026-02-01T00:00:00Z&limit=5", nil)
	w := httptest.NewRecorder()

	handler.Dashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.Dashboard
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(2), resp.Summary.TotalOrders)
	assert.Len(t, resp.TopProducts, 1)
	mockService.AssertExpectations(t)
}

func TestAnalyticsHandler_Dashboard_Error(t *testing.T) {
	mockService := new(MockAnalyticsService)
	handler := NewAnalyticsHandler(mockService, zerolog.Nop())

	mockService.On("Dashboard", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("statement timeout"))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard", nil)
	w := httptest.NewRecorder()

	handler.Dashboard(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "statement timeout")
}
