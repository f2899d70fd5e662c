package backend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/example/hr-dashboard/internal/worktime"
)

// User is the authenticated account returned by the backend.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	DisplayName    string `json:"display_name"`
	IsAdmin        bool   `json:"is_admin"`
	OrganizationID string `json:"organization_id"`
}

// TimesheetRecord is one employee day as served by the timesheet endpoints.
type TimesheetRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	ClockIn     Timestamp `json:"clock_in"`
	ClockOut    Timestamp `json:"clock_out"`
	BreakStart  Timestamp `json:"break_start"`
	BreakEnd    Timestamp `json:"break_end"`
	HoursWorked string    `json:"hours_worked"`
}

// WorkRecord converts the wire record into the aggregator input.
func (r TimesheetRecord) WorkRecord() worktime.Record {
	return worktime.Record{
		ClockIn:     r.ClockIn.Ptr(),
		ClockOut:    r.ClockOut.Ptr(),
		BreakStart:  r.BreakStart.Ptr(),
		BreakEnd:    r.BreakEnd.Ptr(),
		HoursWorked: r.HoursWorked,
	}
}

// WorkRecords converts a slice of wire records.
func WorkRecords(records []TimesheetRecord) []worktime.Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]worktime.Record, 0, len(records))
	for _, record := range records {
		out = append(out, record.WorkRecord())
	}
	return out
}

// StatusCounts carries organization wide attendance totals.
type StatusCounts struct {
	Total  int `json:"total"`
	Absent int `json:"absent"`
}

// Present reports employees that are not absent.
func (s StatusCounts) Present() int {
	if s.Absent >= s.Total {
		return 0
	}
	return s.Total - s.Absent
}

// TimesheetQuery bounds a timesheet listing to [From, To).
type TimesheetQuery struct {
	From time.Time
	To   time.Time
}

// Timestamp is an optional ISO 8601 instant. Null, empty, and malformed values
// decode to the absent state instead of failing the whole payload.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// At returns a present Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// Ptr returns nil when the timestamp is absent.
func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		*t = At(parsed)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
