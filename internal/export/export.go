// Package export writes dashboard views as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/dashboard"
	"github.com/example/hr-dashboard/internal/worktime"
)

// SheetName is the worksheet holding the records.
const SheetName = "Timesheets"

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Date", "Employee", "Clock in", "Clock out", "Break start", "Break end", "Hours", "Clocked hours"}

// FileName suggests a download name for view.
func FileName(view dashboard.View) string {
	return fmt.Sprintf("timesheets_%s_%s_%s.xlsx", view.Mode, view.Period, view.From.Format("20060102"))
}

// WriteTimesheets writes one row per record followed by a summary block.
func WriteTimesheets(w io.Writer, view dashboard.View) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	loc := view.Reference.Location()
	row := 2
	for _, record := range view.Records {
		clocked := ""
		if worked, ok := worktime.WorkedDuration(record.WorkRecord()); ok {
			clocked = worktime.FormatHours(worked.Hours())
		}
		values := []any{
			record.Date,
			record.UserID,
			clock(record.ClockIn, loc),
			clock(record.ClockOut, loc),
			clock(record.BreakStart, loc),
			clock(record.BreakEnd, loc),
			record.HoursWorked,
			clocked,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write record row %d: %w", row, err)
		}
		row++
	}

	row++
	summary := [][]any{
		{"Period", fmt.Sprintf("%s to %s", view.From.Format(time.DateOnly), view.To.AddDate(0, 0, -1).Format(time.DateOnly))},
		{"Hours worked", view.Overview.HoursWorked},
		{"Target hours", view.Overview.TargetHours},
		{"Percentage", view.Overview.Percentage},
		{"Remaining hours", view.Overview.RemainingHours},
		{"Clocked hours", worktime.FormatHours(view.ClockedHours)},
	}
	if view.Status != nil {
		summary = append(summary,
			[]any{"Employees", view.Status.Total},
			[]any{"Absent", view.Status.Absent},
			[]any{"Present", view.Status.Present()},
		)
	}
	for _, values := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write summary row %d: %w", row, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, header); err != nil {
			return fmt.Errorf("style summary row %d: %w", row, err)
		}
		row++
	}

	if err := f.SetColWidth(SheetName, "A", "H", 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func clock(ts backend.Timestamp, loc *time.Location) string {
	if !ts.Valid {
		return ""
	}
	return ts.Time.In(loc).Format("15:04")
}
