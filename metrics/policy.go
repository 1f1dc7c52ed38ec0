package metrics

import "time"

// RenewalWindowDays is how many days before the end date an active policy
// is flagged for renewal.
const RenewalWindowDays = 30

// CalculatePolicyStatus derives the expiry countdown of a policy as of today.
//
// Only the calendar day of today matters, read on today's own wall clock.
// An end date equal to today has 0 days remaining and is not yet expired.
// Counting calendar days gives the same result as rounding the exact
// interval from today's instant up to the next whole day.
func CalculatePolicyStatus(rec ClientPolicyRecord, today time.Time) (PolicyMetrics, error) {
	if rec.EndDate.IsZero() {
		return PolicyMetrics{}, &MissingInputError{Field: "policyEndDate"}
	}

	day := DateOf(today)
	remaining := DaysBetween(day, rec.EndDate)
	active := rec.Status == PolicyActive

	return PolicyMetrics{
		IsActive:      active,
		IsExpired:     rec.EndDate.Before(day),
		DaysRemaining: remaining,
		NeedsRenewal:  active && remaining >= 0 && remaining <= RenewalWindowDays,
	}, nil
}
