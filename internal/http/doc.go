// Package http serves the dashboard as JSON and spreadsheet endpoints.
//
// The router exposes the following endpoints:
//   - GET /healthz: liveness probe returning {"status":"ok"}.
//   - GET /api/calendar?month=YYYY-MM&selected=YYYY-MM-DD: the 42 cell month grid.
//     No token is required.
//   - GET /api/dashboard?view=user|admin&period=week|month&date=YYYY-MM-DD&target=H:
//     the full dashboard payload (`viewDTO` in dashboard_handler.go).
//   - GET /api/overview with the same query: only the overview and donut geometry.
//   - GET /api/export.xlsx with the same query: the records as a spreadsheet.
//
// Data endpoints require a bearer token in the Authorization header or the
// `auth_token` cookie. The token is forwarded to the HR backend unchanged.
// A 403 from the backend becomes ACCESS_DENIED; every other load failure
// becomes LOAD_FAILED with status 502.
package http
