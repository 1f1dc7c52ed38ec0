/*
Package export renders back-office records as Excel workbooks.

PURPOSE:
  Managers download client, attendance and performance lists with the
  derived metrics already filled in. Every workbook has one sheet, a bold
  frozen header row and one row per record.

FAILING ROWS:
  A record the calculators reject (no check-in, zero sales target, no policy
  end date) still gets a row. Its metric cells are blank and the last
  column, "Note", carries the error text. One bad record never aborts an
  export.

SEE ALSO:
  - metrics: the calculators
  - api/handlers.go: /api/reports/*.xlsx
  - cmd/agencyctl: export command
*/
package export

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/metrics"
)

// ContentType is the MIME type of an .xlsx file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	SheetClients     = "Clients"
	SheetAttendance  = "Attendance"
	SheetPerformance = "Performance"
)

var clientHeader = []string{
	"ID", "Name", "Insurance Type", "Policy Number", "Policy End Date", "Status",
	"Days Remaining", "Expired", "Needs Renewal", "Agent", "Note",
}

var attendanceHeader = []string{
	"ID", "Agent", "Check In", "Check Out", "Status",
	"Late", "Late Minutes", "Hours Worked", "Early Checkout", "Note",
}

var performanceHeader = []string{
	"ID", "Agent", "Period Start", "Period End", "Sales Target", "Sales Achieved",
	"Achievement %", "Overall Score", "Rating", "Note",
}

// =============================================================================
// WORKBOOKS
// =============================================================================

// ClientsWorkbook lists clients with their policy countdown as of asOf.
func ClientsWorkbook(clients []client.ClientResponse, asOf time.Time) (*excelize.File, error) {
	f, w, err := newWorkbook(SheetClients, clientHeader)
	if err != nil {
		return nil, err
	}

	for _, c := range clients {
		row := []any{
			c.ID, c.Name, string(c.InsuranceType), deref(c.PolicyNumber), deref(c.PolicyEndDate),
		}
		if c.PolicyStatus != nil {
			row = append(row, string(*c.PolicyStatus))
		} else {
			row = append(row, "")
		}

		m, err := policyMetrics(c, asOf)
		if err != nil {
			row = append(row, "", "", "", agentName(c.AgentFirstName, c.AgentLastName), err.Error())
		} else {
			row = append(row, m.DaysRemaining, yesNo(m.IsExpired), yesNo(m.NeedsRenewal),
				agentName(c.AgentFirstName, c.AgentLastName), "")
		}

		if err := w.append(row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// AttendanceWorkbook lists attendance records with lateness and hours.
// Zone-less timestamps are read in loc.
func AttendanceWorkbook(records []client.AttendanceResponse, loc *time.Location) (*excelize.File, error) {
	f, w, err := newWorkbook(SheetAttendance, attendanceHeader)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		row := []any{r.ID, r.AgentName(), r.CheckInTime, deref(r.CheckOutTime), string(r.Status)}

		m, err := attendanceMetrics(r, loc)
		switch {
		case err != nil:
			row = append(row, "", "", "", "", err.Error())
		case r.CheckOutTime == nil:
			row = append(row, yesNo(m.IsLate), m.LateMinutes, "", "", "")
		default:
			row = append(row, yesNo(m.IsLate), m.LateMinutes, round2(m.TotalHoursWorked), yesNo(m.IsEarlyCheckout), "")
		}

		if err := w.append(row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// PerformanceWorkbook lists reviews with their recomputed score and rating.
func PerformanceWorkbook(records []client.PerformanceResponse) (*excelize.File, error) {
	f, w, err := newWorkbook(SheetPerformance, performanceHeader)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		row := []any{r.ID, r.AgentName(), r.PeriodStart, r.PeriodEnd, r.SalesTarget, r.SalesAchieved}

		m, err := metrics.CalculatePerformance(r.Record())
		if err != nil {
			row = append(row, "", "", "", err.Error())
		} else {
			row = append(row, round2(m.AchievementPercentage), round2(m.OverallScore), string(m.Rating), "")
		}

		if err := w.append(row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func policyMetrics(c client.ClientResponse, asOf time.Time) (metrics.PolicyMetrics, error) {
	rec, err := c.Record()
	if err != nil {
		return metrics.PolicyMetrics{}, err
	}
	return metrics.CalculatePolicyStatus(rec, asOf)
}

func attendanceMetrics(r client.AttendanceResponse, loc *time.Location) (metrics.AttendanceMetrics, error) {
	rec, err := r.Record(loc)
	if err != nil {
		return metrics.AttendanceMetrics{}, err
	}
	return metrics.CalculateAttendance(rec)
}

// =============================================================================
// SHEET WRITER
// =============================================================================

type sheetWriter struct {
	f    *excelize.File
	name string
	row  int
}

// newWorkbook creates a one-sheet workbook with a bold, frozen header row.
func newWorkbook(name string, header []string) (*excelize.File, *sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return nil, nil, fmt.Errorf("name sheet %s: %w", name, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, nil, fmt.Errorf("header style: %w", err)
	}

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &cells); err != nil {
		return nil, nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
		return nil, nil, fmt.Errorf("style header: %w", err)
	}

	err = f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("freeze header: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, nil, err
	}
	if err := f.SetColWidth(name, "A", last, 16); err != nil {
		return nil, nil, err
	}

	return f, &sheetWriter{f: f, name: name, row: 1}, nil
}

func (w *sheetWriter) append(values []any) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(w.name, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", w.name, w.row, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func agentName(first, last string) string {
	if first == "" && last == "" {
		return ""
	}
	return first + " " + last
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
