package fixturebackend

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/worktime"
)

//go:embed schema.sql
var schemaSQL string

const dateLayout = "2006-01-02"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("fixturebackend: not found")

// Storage keeps fixture users, timesheets and absences in SQLite.
type Storage struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn. Use ":memory:" for a throwaway
// database.
func Open(dsn string) (*Storage, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("fixturebackend: dsn is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate applies the embedded schema. It is safe to call repeatedly.
func (s *Storage) Migrate(ctx context.Context) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range splitStatements(schemaSQL) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("execute schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// SeedUser is a fixture account together with its bearer token.
type SeedUser struct {
	backend.User
	Token string
}

// Absence marks a user absent on a day.
type Absence struct {
	UserID string
	Date   time.Time
}

// Dataset is the content inserted by Seed.
type Dataset struct {
	Users      []SeedUser
	Timesheets []backend.TimesheetRecord
	Absences   []Absence
}

// Seed inserts the dataset in one transaction. Records without an ID get a
// random UUID and records without hours text get it derived from their clock
// pairs.
func (s *Storage) Seed(ctx context.Context, data Dataset) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		for _, user := range data.Users {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO users (id, email, display_name, is_admin, organization_id, token) VALUES (?, ?, ?, ?, ?, ?)`,
				user.ID, user.Email, user.DisplayName, boolToInt(user.IsAdmin), user.OrganizationID, user.Token,
			); err != nil {
				return fmt.Errorf("insert user %s: %w", user.ID, err)
			}
		}

		for _, record := range data.Timesheets {
			id := record.ID
			if id == "" {
				id = uuid.NewString()
			}
			hours := record.HoursWorked
			if hours == "" {
				if worked, ok := worktime.WorkedDuration(record.WorkRecord()); ok && worked > 0 {
					hours = worktime.FormatHours(worked.Hours())
				}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO timesheets (id, user_id, work_date, clock_in, clock_out, break_start, break_end, hours_worked) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				id, record.UserID, record.Date,
				nullTimestamp(record.ClockIn), nullTimestamp(record.ClockOut),
				nullTimestamp(record.BreakStart), nullTimestamp(record.BreakEnd),
				hours,
			); err != nil {
				return fmt.Errorf("insert timesheet for %s on %s: %w", record.UserID, record.Date, err)
			}
		}

		for _, absence := range data.Absences {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO absences (user_id, absent_on) VALUES (?, ?)`,
				absence.UserID, absence.Date.Format(dateLayout),
			); err != nil {
				return fmt.Errorf("insert absence for %s: %w", absence.UserID, err)
			}
		}
		return nil
	})
}

// UserByToken resolves the account owning token.
func (s *Storage) UserByToken(ctx context.Context, token string) (backend.User, error) {
	var (
		user    backend.User
		isAdmin int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, is_admin, organization_id FROM users WHERE token = ?`, token,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &isAdmin, &user.OrganizationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return backend.User{}, ErrNotFound
		}
		return backend.User{}, fmt.Errorf("query user by token: %w", err)
	}
	user.IsAdmin = isAdmin != 0
	return user, nil
}

// TimesheetFilter narrows ListTimesheets. Exactly one of UserID and
// OrganizationID is expected to be set.
type TimesheetFilter struct {
	UserID         string
	OrganizationID string
	From           time.Time
	To             time.Time
}

// ListTimesheets returns records with From <= work_date < To ordered by day.
func (s *Storage) ListTimesheets(ctx context.Context, filter TimesheetFilter) ([]backend.TimesheetRecord, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT t.id, t.user_id, t.work_date, t.clock_in, t.clock_out, t.break_start, t.break_end, t.hours_worked
		FROM timesheets t JOIN users u ON u.id = t.user_id WHERE 1 = 1`)
	args := make([]any, 0, 3)

	if filter.UserID != "" {
		query.WriteString(" AND t.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.OrganizationID != "" {
		query.WriteString(" AND u.organization_id = ?")
		args = append(args, filter.OrganizationID)
	}
	if !filter.From.IsZero() {
		query.WriteString(" AND t.work_date >= ?")
		args = append(args, filter.From.Format(dateLayout))
	}
	if !filter.To.IsZero() {
		query.WriteString(" AND t.work_date < ?")
		args = append(args, filter.To.Format(dateLayout))
	}
	query.WriteString(" ORDER BY t.work_date, t.user_id")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query timesheets: %w", err)
	}
	defer rows.Close()

	records := make([]backend.TimesheetRecord, 0)
	for rows.Next() {
		var (
			record                                  backend.TimesheetRecord
			clockIn, clockOut, breakStart, breakEnd sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.UserID, &record.Date, &clockIn, &clockOut, &breakStart, &breakEnd, &record.HoursWorked); err != nil {
			return nil, fmt.Errorf("scan timesheet: %w", err)
		}
		record.ClockIn = parseTimestamp(clockIn)
		record.ClockOut = parseTimestamp(clockOut)
		record.BreakStart = parseTimestamp(breakStart)
		record.BreakEnd = parseTimestamp(breakEnd)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timesheets: %w", err)
	}
	return records, nil
}

// StatusCounts counts the organization's employees and those absent on date.
func (s *Storage) StatusCounts(ctx context.Context, organizationID string, date time.Time) (backend.StatusCounts, error) {
	var counts backend.StatusCounts
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE organization_id = ?`, organizationID,
	).Scan(&counts.Total); err != nil {
		return backend.StatusCounts{}, fmt.Errorf("count employees: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM absences a JOIN users u ON u.id = a.user_id WHERE u.organization_id = ? AND a.absent_on = ?`,
		organizationID, date.Format(dateLayout),
	).Scan(&counts.Absent); err != nil {
		return backend.StatusCounts{}, fmt.Errorf("count absences: %w", err)
	}
	return counts, nil
}

func (s *Storage) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func nullTimestamp(ts backend.Timestamp) sql.NullString {
	if !ts.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: ts.Time.Format(time.RFC3339), Valid: true}
}

func parseTimestamp(value sql.NullString) backend.Timestamp {
	if !value.Valid {
		return backend.Timestamp{}
	}
	parsed, err := time.Parse(time.RFC3339, value.String)
	if err != nil {
		return backend.Timestamp{}
	}
	return backend.At(parsed)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
