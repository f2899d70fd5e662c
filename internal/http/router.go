package http

import (
	"log/slog"
	"net/http"
	"strings"
)

type RouterConfig struct {
	Dashboard  *DashboardHandler
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	requireToken := RequireToken(cfg.Logger)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		newResponder(cfg.Logger).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Dashboard != nil {
		mux.HandleFunc("/api/calendar", getOnly(cfg.Dashboard.Calendar))
		mux.Handle("/api/dashboard", requireToken(getOnly(cfg.Dashboard.View)))
		mux.Handle("/api/overview", requireToken(getOnly(cfg.Dashboard.Overview)))
		mux.Handle("/api/export.xlsx", requireToken(getOnly(cfg.Dashboard.Export)))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		next(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
