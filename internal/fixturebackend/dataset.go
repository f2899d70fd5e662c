package fixturebackend

import (
	"time"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/calendar"
)

// Demo accounts seeded by DemoDataset.
const (
	DemoOrganizationID = "org-demo"
	DemoAdminToken     = "admin-token"
	DemoEmployeeToken  = "employee-token"
	DemoAdminID        = "user-admin"
	DemoEmployeeID     = "user-employee"
)

// DemoDataset builds two accounts in one organization with weekday timesheets
// for the month containing reference and the month before it. The employee
// is absent on the reference day.
func DemoDataset(reference time.Time) Dataset {
	loc := reference.Location()
	data := Dataset{
		Users: []SeedUser{
			{
				User: backend.User{
					ID:             DemoAdminID,
					Email:          "admin@example.com",
					DisplayName:    "Alex Admin",
					IsAdmin:        true,
					OrganizationID: DemoOrganizationID,
				},
				Token: DemoAdminToken,
			},
			{
				User: backend.User{
					ID:             DemoEmployeeID,
					Email:          "employee@example.com",
					DisplayName:    "Erin Employee",
					OrganizationID: DemoOrganizationID,
				},
				Token: DemoEmployeeToken,
			},
		},
		Absences: []Absence{{UserID: DemoEmployeeID, Date: calendar.StartOfDay(reference)}},
	}

	from := calendar.StartOfMonth(calendar.AdvanceMonth(reference, -1))
	until := calendar.StartOfDay(reference)
	for day := from; day.Before(until); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		data.Timesheets = append(data.Timesheets,
			demoRecord(DemoAdminID, day, 9, 0, 18, 0, loc),
			demoRecord(DemoEmployeeID, day, 8, day.Day()%3*15, 17, 15, loc),
		)
	}
	return data
}

func demoRecord(userID string, day time.Time, inHour, inMinute, outHour, outMinute int, loc *time.Location) backend.TimesheetRecord {
	at := func(hour, minute int) backend.Timestamp {
		return backend.At(time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc))
	}
	return backend.TimesheetRecord{
		UserID:     userID,
		Date:       day.Format(dateLayout),
		ClockIn:    at(inHour, inMinute),
		ClockOut:   at(outHour, outMinute),
		BreakStart: at(12, 0),
		BreakEnd:   at(13, 0),
	}
}
