/*
Package metrics computes the derived fields a back-office screen shows next to
a fetched record: attendance lateness and hours, policy expiry countdown, and
performance score and rating.

PURPOSE:
  The backend stores the raw record. Everything in this package is derived
  from that record on the caller's side, so the rules live in one place and
  are shared by the gateway, the CLI and the spreadsheet export.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status tags: AttendanceStatus, PolicyStatus, PerformanceRating
  - Input records: AttendanceRecord, ClientPolicyRecord, PerformanceRecord
  - Results: AttendanceMetrics, PolicyMetrics, PerformanceMetrics

DESIGN PRINCIPLES:
  1. Pure: no I/O, no clock reads, no logging, no package state
  2. Explicit time: "today" is always a parameter
  3. Named failures: degenerate input returns an error from errors.go,
     never a NaN or Inf

USAGE:
  m, err := metrics.CalculateAttendance(metrics.AttendanceRecord{
      CheckIn:  checkIn,
      CheckOut: &checkOut,
      Status:   metrics.AttendancePresent,
  })

SEE ALSO:
  - attendance.go: lateness and hours worked
  - policy.go: expiry and renewal window
  - performance.go: weighted score and rating bands
  - summary.go: monthly aggregation over many attendance records
*/
package metrics

import "time"

// =============================================================================
// STATUS TAGS
// =============================================================================

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceHalfDay AttendanceStatus = "HALF_DAY"
	AttendanceOnLeave AttendanceStatus = "ON_LEAVE"
)

type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "ACTIVE"
	PolicyPending   PolicyStatus = "PENDING"
	PolicyExpired   PolicyStatus = "EXPIRED"
	PolicyCancelled PolicyStatus = "CANCELLED"
	PolicyRenewed   PolicyStatus = "RENEWED"
)

type PerformanceRating string

const (
	RatingOutstanding         PerformanceRating = "OUTSTANDING"
	RatingExceedsExpectations PerformanceRating = "EXCEEDS_EXPECTATIONS"
	RatingMeetsExpectations   PerformanceRating = "MEETS_EXPECTATIONS"
	RatingNeedsImprovement    PerformanceRating = "NEEDS_IMPROVEMENT"
	RatingUnsatisfactory      PerformanceRating = "UNSATISFACTORY"
)

// =============================================================================
// INPUT RECORDS
// =============================================================================

// AttendanceRecord is one check-in/check-out pair. CheckIn carries the
// location whose wall clock defines the 06:30 expected start.
type AttendanceRecord struct {
	CheckIn  time.Time
	CheckOut *time.Time // nil while the agent is still checked in
	Status   AttendanceStatus
}

// ClientPolicyRecord is the part of a client record needed for expiry.
// A zero EndDate means the backend sent no end date.
type ClientPolicyRecord struct {
	EndDate Date
	Status  PolicyStatus
}

// PerformanceRecord holds one review period's inputs. Rates and scores are
// percentages in the 0-100 range; nil optional scores count as 0.
type PerformanceRecord struct {
	SalesTarget               float64
	SalesAchieved             float64
	ClientRetentionRate       *float64
	CustomerSatisfactionScore *float64
	AttendanceScore           float64
	QualityScore              float64
}

// =============================================================================
// RESULTS
// =============================================================================

type AttendanceMetrics struct {
	IsLate           bool    `json:"isLate"`
	LateMinutes      int     `json:"lateMinutes"`
	TotalHoursWorked float64 `json:"totalHoursWorked"`
	IsEarlyCheckout  bool    `json:"isEarlyCheckout"`
}

type PolicyMetrics struct {
	IsActive      bool `json:"isActive"`
	IsExpired     bool `json:"isExpired"`
	DaysRemaining int  `json:"daysRemaining"`
	NeedsRenewal  bool `json:"needsRenewal"`
}

type PerformanceMetrics struct {
	AchievementPercentage float64           `json:"achievementPercentage"`
	OverallScore          float64           `json:"overallScore"`
	Rating                PerformanceRating `json:"rating"`
}
