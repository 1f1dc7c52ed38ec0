package metrics

import "time"

// Expected start of the working day, on the check-in's own wall clock.
const (
	ExpectedStartHour   = 6
	ExpectedStartMinute = 30
)

// FullShift is the minimum time on site before a check-out stops being early.
const FullShift = 8 * time.Hour

// ExpectedStart returns 06:30 on the calendar day of checkIn, in checkIn's location.
func ExpectedStart(checkIn time.Time) time.Time {
	return time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(),
		ExpectedStartHour, ExpectedStartMinute, 0, 0, checkIn.Location())
}

// CalculateAttendance derives lateness and hours worked for one record.
//
// A check-in at exactly 06:30:00 is on time. Late minutes are floored, so a
// check-in at 06:30:59 is late by 0 minutes. A check-out earlier than the
// check-in is rejected with an *IntervalError.
func CalculateAttendance(rec AttendanceRecord) (AttendanceMetrics, error) {
	if rec.CheckIn.IsZero() {
		return AttendanceMetrics{}, &MissingInputError{Field: "checkInTime"}
	}

	var m AttendanceMetrics

	start := ExpectedStart(rec.CheckIn)
	if rec.CheckIn.After(start) {
		m.IsLate = true
		m.LateMinutes = int(rec.CheckIn.Sub(start) / time.Minute)
	}

	if rec.CheckOut != nil {
		worked := rec.CheckOut.Sub(rec.CheckIn)
		if worked < 0 {
			return AttendanceMetrics{}, &IntervalError{CheckIn: rec.CheckIn, CheckOut: *rec.CheckOut}
		}
		m.TotalHoursWorked = worked.Hours()
		m.IsEarlyCheckout = worked < FullShift
	}

	return m, nil
}
