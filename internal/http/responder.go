package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/hr-dashboard/internal/dashboard"
	"github.com/example/hr-dashboard/internal/logging"
)

var errMissingToken = errors.New("An authentication token is required.")

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) writeValidation(ctx context.Context, w http.ResponseWriter, fields map[string]string) {
	r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
		ErrorCode: "INVALID_REQUEST",
		Message:   statusMessage(http.StatusBadRequest),
		Errors:    fields,
	})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, dashboard.ErrAccessDenied):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "ACCESS_DENIED",
			Message:   dashboard.AccessDeniedMessage,
		})
	default:
		var vErr *dashboard.ValidationError
		if errors.As(err, &vErr) {
			r.writeValidation(ctx, w, vErr.FieldErrors)
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "dashboard load failed", "error", err, "error_kind", dashboard.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{
			ErrorCode: "LOAD_FAILED",
			Message:   dashboard.LoadFailedMessage,
		})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is invalid."
	case http.StatusUnauthorized:
		return "Authentication is required."
	case http.StatusForbidden:
		return dashboard.AccessDeniedMessage
	case http.StatusNotFound:
		return "The requested resource was not found."
	default:
		return dashboard.LoadFailedMessage
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
