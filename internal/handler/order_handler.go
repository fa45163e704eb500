package handler

import (
	"errors"
	"io"
	"net"
	"net/http"

	"order-service/internal/middleware"
	"order-service/internal/model"
	"order-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	// The storefront may omit client metadata; fall back to what the request carries.
	if req.IPAddress == "" {
		req.IPAddress = clientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders?email=&limit=&offset= requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListOrdersByEmail(r.Context(), r.URL.Query().Get("email"), limit, offset)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{orderNumber} requests.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	order, err := h.service.GetOrder(r.Context(), orderNumber)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	if order == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeOrderNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{orderNumber}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var change model.StatusChange
	if err := decodeJSON(w, r, &change); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	change.OrderNumber = chi.URLParam(r, "orderNumber")
	change.Actor = middleware.ActorFromContext(r.Context())

	order, err := h.service.UpdateStatus(r.Context(), &change)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// AddTracking handles POST /api/orders/{orderNumber}/tracking requests.
func (h *OrderHandler) AddTracking(w http.ResponseWriter, r *http.Request) {
	var update model.TrackingUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	update.OrderNumber = chi.URLParam(r, "orderNumber")
	update.Actor = middleware.ActorFromContext(r.Context())

	order, err := h.service.AddTracking(r.Context(), &update)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{orderNumber}/cancel requests. The body is optional.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var change model.StatusChange
	if err := decodeJSON(w, r, &change); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	change.OrderNumber = chi.URLParam(r, "orderNumber")
	change.Actor = middleware.ActorFromContext(r.Context())

	order, err := h.service.CancelOrder(r.Context(), &change)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
