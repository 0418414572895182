package rest

import (
	"context"
	stderrors "errors"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/clauseguard/compliance-engine-backend/internal/domain/errors"
)

// ErrorBody is the uniform error envelope of every non-2xx response
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto the error envelope. Unclassified
// errors surface as opaque 500s.
func writeError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if appErr.StatusCode >= 500 {
			logger.ErrorContext(ctx, "request failed", "code", appErr.Code, "error", err)
		}
		writeJSON(w, appErr.StatusCode, ErrorResponse{Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}})
		return
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: ErrorBody{
			Code:    "REQUEST_TIMEOUT",
			Message: "Request canceled or timed out",
		}})
		return
	}

	logger.ErrorContext(ctx, "unclassified request failure", "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
		Code:    "INTERNAL_ERROR",
		Message: "An internal error occurred",
	}})
}

// writeValidationError renders validator.v10 field errors as a 400 with
// per-field detail.
func writeValidationError(w http.ResponseWriter, err error) {
	details := map[string]interface{}{}
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
		Code:    "VALIDATION_FAILED",
		Message: "Request body failed validation",
		Details: details,
	}})
}
