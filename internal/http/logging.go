package http

import (
	"context"
	"log/slog"

	"github.com/example/hr-dashboard/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// handlerLogger prefers the request scoped logger installed by RequestLogger
// and tags it with the dashboard endpoint being served.
func handlerLogger(ctx context.Context, fallback *slog.Logger, endpoint string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
		if id, ok := RequestIDFromContext(ctx); ok {
			logger = logger.With("request_id", id)
		}
	}
	return logger.With(append([]any{"handler", "dashboard", "endpoint", endpoint}, attrs...)...)
}
