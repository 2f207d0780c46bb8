package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/senira34/lolipop-wear/internal/repository"
)

// Envelope wraps every successful response.
type Envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, Envelope{Success: true, Data: data})
}

func respondList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	respondJSON(w, http.StatusOK, Envelope{Success: true, Count: &n, Data: items})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Message: message,
		Code:    code,
	})
}

// ErrorMapper turns service errors into HTTP responses. Internal error
// detail is only exposed outside production.
type ErrorMapper struct {
	Logger     *slog.Logger
	Production bool
}

func (e ErrorMapper) handleError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var vErr *domain.ValidationError
	var gErr *payment.GatewayError

	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: vErr.Message,
			Code:    "validation_error",
			Fields:  vErr.Fields,
		})
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Order not found")
	case errors.Is(err, repository.ErrDuplicateProduct):
		respondError(w, http.StatusBadRequest, "already_exists", "Product with this ID already exists")
	case errors.As(err, &gErr):
		e.Logger.WarnContext(r.Context(), "payment processor error", "op", gErr.Op, "error", err)
		respondError(w, http.StatusBadGateway, "payment_error", gErr.Message)
	default:
		e.Logger.ErrorContext(r.Context(), message, "method", r.Method, "path", r.URL.Path, "error", err)
		resp := ErrorResponse{Message: message, Code: "internal_error"}
		if !e.Production {
			resp.Error = err.Error()
		}
		respondJSON(w, http.StatusInternalServerError, resp)
	}
}
