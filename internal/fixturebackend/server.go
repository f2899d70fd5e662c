// Package fixturebackend serves the HR backend endpoints consumed by the
// dashboard from a SQLite database. It backs the client tests and the
// --demo mode of the dashboard binary; it is not a production backend.
//
// Endpoints mirror the paths declared in package backend:
//   - GET /api/users/me
//   - GET /api/timesheets?from=YYYY-MM-DD&to=YYYY-MM-DD
//   - GET /api/admin/timesheets?from=...&to=... (administrators only)
//   - GET /api/admin/employees/status?date=YYYY-MM-DD (administrators only)
//
// Requests must carry "Authorization: Bearer <token>" and the same token in
// the X-CSRF-Token header.
package fixturebackend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/hr-dashboard/internal/backend"
)

// Server exposes Storage over HTTP.
type Server struct {
	storage *Storage
	now     func() time.Time
	logger  *slog.Logger
}

// NewServer wires a Server. now defaults to time.Now.
func NewServer(storage *Storage, now func() time.Time, logger *slog.Logger) *Server {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{storage: storage, now: now, logger: logger.With("component", "fixturebackend")}
}

// Handler returns the routed endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(backend.PathCurrentUser, s.authenticated(false, s.currentUser))
	mux.HandleFunc(backend.PathTimesheets, s.authenticated(false, s.timesheets))
	mux.HandleFunc(backend.PathAdminTimesheets, s.authenticated(true, s.adminTimesheets))
	mux.HandleFunc(backend.PathEmployeeStatus, s.authenticated(true, s.employeeStatus))
	return mux
}

type userHandler func(w http.ResponseWriter, r *http.Request, user backend.User)

func (s *Server) authenticated(adminOnly bool, next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		token := bearerToken(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if r.Header.Get(backend.CSRFHeader) != token {
			writeMessage(w, http.StatusForbidden, "csrf token mismatch")
			return
		}

		user, err := s.storage.UserByToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeMessage(w, http.StatusUnauthorized, "unknown token")
				return
			}
			s.fail(r.Context(), w, "resolve token", err)
			return
		}
		if adminOnly && !user.IsAdmin {
			writeMessage(w, http.StatusForbidden, "administrator role required")
			return
		}

		next(w, r, user)
	}
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request, user backend.User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) timesheets(w http.ResponseWriter, r *http.Request, user backend.User) {
	filter, ok := parseRange(w, r)
	if !ok {
		return
	}
	filter.UserID = user.ID
	s.listTimesheets(w, r, filter)
}

func (s *Server) adminTimesheets(w http.ResponseWriter, r *http.Request, user backend.User) {
	filter, ok := parseRange(w, r)
	if !ok {
		return
	}
	filter.OrganizationID = user.OrganizationID
	s.listTimesheets(w, r, filter)
}

func (s *Server) listTimesheets(w http.ResponseWriter, r *http.Request, filter TimesheetFilter) {
	records, err := s.storage.ListTimesheets(r.Context(), filter)
	if err != nil {
		s.fail(r.Context(), w, "list timesheets", err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Records []backend.TimesheetRecord `json:"records"`
	}{Records: records})
}

func (s *Server) employeeStatus(w http.ResponseWriter, r *http.Request, user backend.User) {
	date := s.now()
	if value := strings.TrimSpace(r.URL.Query().Get("date")); value != "" {
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	counts, err := s.storage.StatusCounts(r.Context(), user.OrganizationID, date)
	if err != nil {
		s.fail(r.Context(), w, "count status", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) fail(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	s.logger.ErrorContext(ctx, "fixture backend failed", "operation", operation, "error", err)
	writeMessage(w, http.StatusInternalServerError, "internal error")
}

func parseRange(w http.ResponseWriter, r *http.Request) (TimesheetFilter, bool) {
	var filter TimesheetFilter
	query := r.URL.Query()
	for _, field := range []struct {
		name   string
		target *time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		value := strings.TrimSpace(query.Get(field.name))
		if value == "" {
			continue
		}
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, field.name+" must be YYYY-MM-DD")
			return TimesheetFilter{}, false
		}
		*field.target = parsed
	}
	return filter, true
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, struct {
		Message string `json:"message"`
	}{Message: message})
}
