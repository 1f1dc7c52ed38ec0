package metrics

import "math"

// AttendanceSummary has the same shape as the monthly summary the backend
// returns, so an offline summary and a fetched one render the same way.
type AttendanceSummary struct {
	TotalDaysThisMonth   int     `json:"totalDaysThisMonth"`
	PresentDays          int     `json:"presentDays"`
	LateDays             int     `json:"lateDays"`
	HalfDays             int     `json:"halfDays"`
	AbsentDays           int     `json:"absentDays"`
	LeaveDays            int     `json:"leaveDays"`
	AverageHoursWorked   float64 `json:"averageHoursWorked"`
	AttendancePercentage float64 `json:"attendancePercentage"`

	// Skipped counts records whose metrics could not be computed. Their
	// status still counts, their hours do not.
	Skipped int `json:"skipped,omitempty"`
}

// SummarizeAttendance aggregates a period's records against the number of
// working days in that period.
//
// A PRESENT record whose check-in is after 06:30 counts as a late day.
// Average hours only cover records that have a check-out. The attendance
// percentage counts present, late and half days, and is 0 when workingDays
// is not positive.
func SummarizeAttendance(records []AttendanceRecord, workingDays int) AttendanceSummary {
	s := AttendanceSummary{TotalDaysThisMonth: workingDays}

	var hours float64
	var withCheckout int

	for _, rec := range records {
		m, err := CalculateAttendance(rec)
		if err != nil {
			s.Skipped++
		}

		switch rec.Status {
		case AttendancePresent:
			if err == nil && m.IsLate {
				s.LateDays++
			} else {
				s.PresentDays++
			}
		case AttendanceLate:
			s.LateDays++
		case AttendanceHalfDay:
			s.HalfDays++
		case AttendanceAbsent:
			s.AbsentDays++
		case AttendanceOnLeave:
			s.LeaveDays++
		}

		if err == nil && rec.CheckOut != nil {
			hours += m.TotalHoursWorked
			withCheckout++
		}
	}

	if withCheckout > 0 {
		s.AverageHoursWorked = round2(hours / float64(withCheckout))
	}
	if workingDays > 0 {
		attended := s.PresentDays + s.LateDays + s.HalfDays
		s.AttendancePercentage = round2(float64(attended) / float64(workingDays) * 100)
	}

	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
