// Package backend is the HTTP client for the HR backend that owns users,
// timesheets and attendance data.
//
// Every request carries the caller's bearer token in the Authorization header
// and repeats it in the X-CSRF-Token header. Requests are never retried.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/hr-dashboard/internal/logging"
)

const (
	// CSRFHeader duplicates the bearer token on every request.
	CSRFHeader = "X-CSRF-Token"

	PathCurrentUser     = "/api/users/me"
	PathTimesheets      = "/api/timesheets"
	PathAdminTimesheets = "/api/admin/timesheets"
	PathEmployeeStatus  = "/api/admin/employees/status"

	dateLayout = "2006-01-02"
)

// Client talks to the HR backend.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithToken sets the token used when the request context carries none.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets the fallback logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient validates baseURL and returns a Client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend: base URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CurrentUser fetches the account that owns the token.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := c.getJSON(ctx, PathCurrentUser, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Timesheets lists the caller's own timesheet records.
func (c *Client) Timesheets(ctx context.Context, query TimesheetQuery) ([]TimesheetRecord, error) {
	return c.listTimesheets(ctx, PathTimesheets, query)
}

// AdminTimesheets lists timesheet records for the caller's whole organization.
func (c *Client) AdminTimesheets(ctx context.Context, query TimesheetQuery) ([]TimesheetRecord, error) {
	return c.listTimesheets(ctx, PathAdminTimesheets, query)
}

// EmployeeStatus fetches total and absent employee counts for date.
func (c *Client) EmployeeStatus(ctx context.Context, date time.Time) (StatusCounts, error) {
	values := url.Values{}
	if !date.IsZero() {
		values.Set("date", date.Format(dateLayout))
	}
	var counts StatusCounts
	if err := c.getJSON(ctx, PathEmployeeStatus, values, &counts); err != nil {
		return StatusCounts{}, err
	}
	return counts, nil
}

func (c *Client) listTimesheets(ctx context.Context, path string, query TimesheetQuery) ([]TimesheetRecord, error) {
	values := url.Values{}
	if !query.From.IsZero() {
		values.Set("from", query.From.Format(dateLayout))
	}
	if !query.To.IsZero() {
		values.Set("to", query.To.Format(dateLayout))
	}

	var payload struct {
		Records []TimesheetRecord `json:"records"`
	}
	if err := c.getJSON(ctx, path, values, &payload); err != nil {
		return nil, err
	}
	return payload.Records, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	token := TokenFromContext(ctx)
	if token == "" {
		token = c.token
	}
	if token == "" {
		return ErrUnauthenticated
	}

	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: error creating request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(CSRFHeader, token)

	logger := c.loggerFor(ctx).With("path", path)
	start := time.Now()

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.WarnContext(ctx, "backend request failed", "error", err)
		return fmt.Errorf("%w: error making request: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	logger.DebugContext(ctx, "backend responded", "status", res.StatusCode, "duration", time.Since(start))

	switch {
	case res.StatusCode == http.StatusForbidden:
		return ErrAccessDenied
	case res.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case res.StatusCode < 200 || res.StatusCode > 299:
		return &StatusError{Status: res.StatusCode, Message: decodeErrorMessage(res.Body)}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty response body", ErrUnavailable)
		}
		return fmt.Errorf("%w: error decoding response: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger.With("component", "backend")
	}
	return c.logger.With("component", "backend")
}

func decodeErrorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
