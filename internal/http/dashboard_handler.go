package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/calendar"
	"github.com/example/hr-dashboard/internal/dashboard"
	"github.com/example/hr-dashboard/internal/export"
	"github.com/example/hr-dashboard/internal/worktime"
)

type dashboardService interface {
	Build(ctx context.Context, params dashboard.Params) (dashboard.View, error)
	Grid(reference time.Time) calendar.Grid
	Now() time.Time
}

type DashboardHandler struct {
	service   dashboardService
	responder responder
	logger    *slog.Logger
}

func NewDashboardHandler(service dashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// View serves the full dashboard payload.
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	view, ok := h.build(w, r, "View")
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toViewDTO(view))
}

// Overview serves only the aggregate and the donut geometry.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	view, ok := h.build(w, r, "Overview")
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, overviewResponse{
		Overview:     toOverviewDTO(view.Overview),
		ClockedHours: worktime.FormatHours(view.ClockedHours),
		Donut:        toDonutDTO(view.Donut),
		Status:       toStatusDTO(view.Status),
	})
}

// Export streams the records of the view as a spreadsheet.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, ok := h.build(w, r, "Export")
	if !ok {
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(view)+`"`)
	if err := export.WriteTimesheets(w, view); err != nil {
		handlerLogger(r.Context(), h.logger, "Export").ErrorContext(r.Context(), "failed to write spreadsheet", "error", err)
	}
}

// Calendar serves the month grid. It never calls the backend.
func (h *DashboardHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reference, fields := parseCalendarQuery(r.URL.Query(), h.service.Now())
	if len(fields) > 0 {
		h.responder.writeValidation(r.Context(), w, fields)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCalendarDTO(h.service.Grid(reference)))
}

func (h *DashboardHandler) build(w http.ResponseWriter, r *http.Request, operation string) (dashboard.View, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return dashboard.View{}, false
	}

	params, fields := parseDashboardQuery(r.URL.Query(), h.service.Now().Location())
	if len(fields) > 0 {
		h.responder.writeValidation(r.Context(), w, fields)
		return dashboard.View{}, false
	}

	logger := handlerLogger(r.Context(), h.logger, operation,
		"mode", string(params.Mode),
		"period", string(params.Period),
	)

	view, err := h.service.Build(r.Context(), params)
	if err != nil {
		logger.WarnContext(r.Context(), "dashboard request failed", "error_kind", dashboard.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return dashboard.View{}, false
	}
	return view, true
}

func parseDashboardQuery(values url.Values, loc *time.Location) (dashboard.Params, map[string]string) {
	fields := map[string]string{}
	params := dashboard.Params{
		Mode:   dashboard.Mode(strings.ToLower(strings.TrimSpace(values.Get("view")))),
		Period: dashboard.Period(strings.ToLower(strings.TrimSpace(values.Get("period")))),
	}

	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		date, err := time.ParseInLocation(time.DateOnly, raw, loc)
		if err != nil {
			fields["date"] = "must be YYYY-MM-DD"
		} else {
			params.Reference = date
		}
	}

	if raw := strings.TrimSpace(values.Get("target")); raw != "" {
		target := worktime.ParseHours(raw)
		if target <= 0 {
			fields["target"] = "must be a positive number of hours"
		} else {
			params.TargetHours = target
		}
	}

	return params, fields
}

func parseCalendarQuery(values url.Values, now time.Time) (time.Time, map[string]string) {
	fields := map[string]string{}
	loc := now.Location()
	reference := now

	var month time.Time
	if raw := strings.TrimSpace(values.Get("month")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, loc)
		if err != nil {
			fields["month"] = "must be YYYY-MM"
		} else {
			month = parsed
			if parsed.Year() != now.Year() || parsed.Month() != now.Month() {
				reference = parsed
			}
		}
	}

	if raw := strings.TrimSpace(values.Get("selected")); raw != "" {
		selected, err := time.ParseInLocation(time.DateOnly, raw, loc)
		switch {
		case err != nil:
			fields["selected"] = "must be YYYY-MM-DD"
		case !month.IsZero() && (selected.Year() != month.Year() || selected.Month() != month.Month()):
			fields["selected"] = "must fall within month"
		default:
			reference = selected
		}
	}

	return reference, fields
}

type viewDTO struct {
	User         userDTO      `json:"user"`
	Mode         string       `json:"view"`
	Period       string       `json:"period"`
	From         string       `json:"from"`
	To           string       `json:"to"`
	Calendar     calendarDTO  `json:"calendar"`
	Overview     overviewDTO  `json:"overview"`
	ClockedHours string       `json:"clocked_hours"`
	Donut        donutDTO     `json:"donut"`
	Status       *statusDTO   `json:"status,omitempty"`
	Records      []recordDTO  `json:"records"`
	Anomalies    []anomalyDTO `json:"anomalies,omitempty"`
	FetchedAt    time.Time    `json:"fetched_at"`
}

type userDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

type calendarDTO struct {
	Month    string    `json:"month"`
	Weekdays []string  `json:"weekdays"`
	Cells    []cellDTO `json:"cells"`
}

type cellDTO struct {
	Day             int    `json:"day"`
	Date            string `json:"date"`
	InMonth         bool   `json:"in_month"`
	HasEvent        bool   `json:"has_event"`
	Event           string `json:"event,omitempty"`
	IsSelectedToday bool   `json:"is_selected_today"`
}

type overviewDTO struct {
	HoursWorked    float64 `json:"hours_worked"`
	TargetHours    float64 `json:"target_hours"`
	Percentage     int     `json:"percentage"`
	RemainingHours float64 `json:"remaining_hours"`
}

type donutDTO struct {
	Radius        float64 `json:"radius"`
	Circumference float64 `json:"circumference"`
	Filled        float64 `json:"filled"`
	Empty         float64 `json:"empty"`
	DashArray     string  `json:"dash_array"`
	DashOffset    string  `json:"dash_offset"`
}

type statusDTO struct {
	Total   int `json:"total"`
	Absent  int `json:"absent"`
	Present int `json:"present"`
}

type recordDTO struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Date        string            `json:"date"`
	ClockIn     backend.Timestamp `json:"clock_in"`
	ClockOut    backend.Timestamp `json:"clock_out"`
	BreakStart  backend.Timestamp `json:"break_start"`
	BreakEnd    backend.Timestamp `json:"break_end"`
	HoursWorked string            `json:"hours_worked"`
}

type anomalyDTO struct {
	RecordID string `json:"record_id"`
	Date     string `json:"date"`
	Hours    string `json:"hours"`
}

type overviewResponse struct {
	Overview     overviewDTO `json:"overview"`
	ClockedHours string      `json:"clocked_hours"`
	Donut        donutDTO    `json:"donut"`
	Status       *statusDTO  `json:"status,omitempty"`
}

func toViewDTO(view dashboard.View) viewDTO {
	dto := viewDTO{
		User: userDTO{
			ID:          view.User.ID,
			DisplayName: view.User.DisplayName,
			IsAdmin:     view.User.IsAdmin,
		},
		Mode:         string(view.Mode),
		Period:       string(view.Period),
		From:         view.From.Format(time.DateOnly),
		To:           view.To.Format(time.DateOnly),
		Calendar:     toCalendarDTO(view.Calendar),
		Overview:     toOverviewDTO(view.Overview),
		ClockedHours: worktime.FormatHours(view.ClockedHours),
		Donut:        toDonutDTO(view.Donut),
		Status:       toStatusDTO(view.Status),
		Records:      make([]recordDTO, 0, len(view.Records)),
		FetchedAt:    view.FetchedAt,
	}
	for _, record := range view.Records {
		dto.Records = append(dto.Records, recordDTO(record))
	}
	for _, anomaly := range view.Anomalies {
		if anomaly.Index < 0 || anomaly.Index >= len(view.Records) {
			continue
		}
		record := view.Records[anomaly.Index]
		dto.Anomalies = append(dto.Anomalies, anomalyDTO{
			RecordID: record.ID,
			Date:     record.Date,
			Hours:    worktime.FormatHours(anomaly.Duration.Hours()),
		})
	}
	return dto
}

func toCalendarDTO(grid calendar.Grid) calendarDTO {
	dto := calendarDTO{
		Month:    grid.Month.Format("2006-01"),
		Weekdays: calendar.WeekdayLabels[:],
		Cells:    make([]cellDTO, 0, len(grid.Cells)),
	}
	for _, cell := range grid.Cells {
		dto.Cells = append(dto.Cells, cellDTO{
			Day:             cell.Day,
			Date:            cell.Date.Format(time.DateOnly),
			InMonth:         cell.InDisplayedMonth,
			HasEvent:        cell.HasEvent,
			Event:           cell.Event.String(),
			IsSelectedToday: cell.IsSelectedToday,
		})
	}
	return dto
}

func toOverviewDTO(overview worktime.Overview) overviewDTO {
	return overviewDTO{
		HoursWorked:    overview.HoursWorked,
		TargetHours:    overview.TargetHours,
		Percentage:     overview.Percentage,
		RemainingHours: overview.RemainingHours,
	}
}

func toDonutDTO(donut worktime.Donut) donutDTO {
	return donutDTO{
		Radius:        donut.Radius,
		Circumference: donut.Circumference,
		Filled:        donut.Filled,
		Empty:         donut.Empty,
		DashArray:     donut.DashArray(),
		DashOffset:    donut.DashOffset(),
	}
}

func toStatusDTO(status *backend.StatusCounts) *statusDTO {
	if status == nil {
		return nil
	}
	return &statusDTO{Total: status.Total, Absent: status.Absent, Present: status.Present()}
}
