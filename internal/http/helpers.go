package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kontor/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "Response encoding failed", "error", err)
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

var validationErrors = []error{
	core.ErrEmptyClientName,
	core.ErrMissingClientNumber,
	core.ErrEmptyLineItems,
	core.ErrEmptyDescription,
	core.ErrInvalidQuantity,
	core.ErrNegativeUnitPrice,
	core.ErrInvalidPayment,
	core.ErrInvalidBusiness,
	core.ErrInvalidStatus,
}

// writeError maps domain errors onto HTTP status codes: validation 422, not
// found 404, upstream failures 502, upstream timeouts 504, the rest 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case isValidation(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	default:
		var upstream *core.UpstreamError
		if errors.As(err, &upstream) {
			if upstream.Timeout {
				status = http.StatusGatewayTimeout
			} else {
				status = http.StatusBadGateway
			}
		}
	}

	if status >= 500 {
		slog.ErrorContext(ctx, "Request failed", "error", err, "status", status)
	}
	writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}

func isValidation(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
