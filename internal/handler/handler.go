package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"order-service/internal/model"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().
		Str("code", code).
		Str("error", message).
		Int("status", status).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.GetReqID(r.Context()),
	})
}

// writeDomainError maps service errors onto HTTP responses. Anything that is
// not a known domain error is reported as a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		logger.Info().Err(err).Msg("request failed validation")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:         model.ErrCodeValidation,
			Message:       "request failed validation",
			Fields:        verr.Fields,
			CorrelationID: middleware.GetReqID(r.Context()),
		})
		return
	}

	var derr *model.DomainError
	if errors.As(err, &derr) {
		writeError(w, r, domainStatus(derr.Code), derr.Code, derr.Message, logger)
		return
	}

	logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("unexpected error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:         model.ErrCodeInternalError,
		Message:       "internal server error",
		CorrelationID: middleware.GetReqID(r.Context()),
	})
}

func domainStatus(code string) int {
	switch code {
	case model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeConcurrencyConflict:
		return http.StatusConflict
	case model.ErrCodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case model.ErrCodeDuplicateOrderNumber:
		return http.StatusServiceUnavailable
	case model.ErrCodeInvalidWindow, model.ErrCodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a size-limited JSON body into dest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dest)
}

// queryInt parses an optional integer query parameter. A missing value yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError(name, "must be an integer")
	}
	return v, nil
}
