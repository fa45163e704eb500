package handler

import (
	"net/http"
	"time"

	"order-service/internal/model"
	"order-service/internal/service"

	"github.com/rs/zerolog"
)

// AnalyticsHandler serves reporting endpoints.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("handler", "analytics").Logger(),
	}
}

// Summary handles GET /api/analytics/summary requests.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	summary, err := h.service.Summary(r.Context(), window)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// TopProducts handles GET /api/analytics/top-products requests.
func (h *AnalyticsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	window, limit, err := parseWindowAndLimit(r)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	stats, err := h.service.TopProducts(r.Context(), window, limit)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Dashboard handles GET /api/analytics/dashboard requests.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	window, limit, err := parseWindowAndLimit(r)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), window, limit)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

func parseWindowAndLimit(r *http.Request) (*model.Window, int, error) {
	window, err := parseWindow(r)
	if err != nil {
		return nil, 0, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return nil, 0, err
	}
	return window, limit, nil
}

// parseWindow reads start and end as RFC3339. Both absent means the default
// trailing window; supplying only one is rejected.
func parseWindow(r *http.Request) (*model.Window, error) {
	q := r.URL.Query()
	rawStart, rawEnd := q.Get("start"), q.Get("end")

	if rawStart == "" && rawEnd == "" {
		return nil, nil
	}

	verr := &model.ValidationError{}
	if rawStart == "" {
		verr.Add("start", "is required when end is given")
	}
	if rawEnd == "" {
		verr.Add("end", "is required when start is given")
	}

	var window model.Window
	var err error
	if rawStart != "" {
		if window.Start, err = time.Parse(time.RFC3339, rawStart); err != nil {
			verr.Add("start", "must be an RFC3339 timestamp")
		}
	}
	if rawEnd != "" {
		if window.End, err = time.Parse(time.RFC3339, rawEnd); err != nil {
			verr.Add("end", "must be an RFC3339 timestamp")
		}
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return &window, nil
}
