package metrics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Weights of the overall score. They must sum to 1.0.
var (
	weightSales        = decimal.RequireFromString("0.4")
	weightRetention    = decimal.RequireFromString("0.2")
	weightSatisfaction = decimal.RequireFromString("0.2")
	weightAttendance   = decimal.RequireFromString("0.1")
	weightQuality      = decimal.RequireFromString("0.1")

	hundred = decimal.NewFromInt(100)
)

// ratingBands is ordered from the highest floor down. Each floor is inclusive.
var ratingBands = []struct {
	floor  float64
	rating PerformanceRating
}{
	{90, RatingOutstanding},
	{80, RatingExceedsExpectations},
	{70, RatingMeetsExpectations},
	{60, RatingNeedsImprovement},
}

// RatingFor maps an overall score to its band. Exactly 90.0 is OUTSTANDING,
// 89.999 is EXCEEDS_EXPECTATIONS.
func RatingFor(score float64) PerformanceRating {
	for _, b := range ratingBands {
		if score >= b.floor {
			return b.rating
		}
	}
	return RatingUnsatisfactory
}

// CalculatePerformance computes achievement, the weighted overall score and
// the rating of one review period.
//
// The sum is done in decimal so a score that should land on a band floor is
// not pushed below it by binary rounding. The score is not clamped: a sales
// achievement above 100% can lift it past 100.
func CalculatePerformance(rec PerformanceRecord) (PerformanceMetrics, error) {
	if err := checkFinite(rec); err != nil {
		return PerformanceMetrics{}, err
	}
	if rec.SalesTarget == 0 {
		return PerformanceMetrics{}, ErrDivisionByZero
	}

	achievement := decimal.NewFromFloat(rec.SalesAchieved).
		Div(decimal.NewFromFloat(rec.SalesTarget)).
		Mul(hundred)

	score := achievement.Mul(weightSales).
		Add(optionalScore(rec.ClientRetentionRate).Mul(weightRetention)).
		Add(optionalScore(rec.CustomerSatisfactionScore).Mul(weightSatisfaction)).
		Add(decimal.NewFromFloat(rec.AttendanceScore).Mul(weightAttendance)).
		Add(decimal.NewFromFloat(rec.QualityScore).Mul(weightQuality))

	pct, _ := achievement.Float64()
	if math.IsInf(pct, 0) {
		return PerformanceMetrics{}, &InvalidValueError{Field: "achievementPercentage", Value: pct}
	}
	overall, _ := score.Float64()
	if math.IsInf(overall, 0) {
		return PerformanceMetrics{}, &InvalidValueError{Field: "overallScore", Value: overall}
	}

	return PerformanceMetrics{
		AchievementPercentage: pct,
		OverallScore:          overall,
		Rating:                RatingFor(overall),
	}, nil
}

func optionalScore(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

func checkFinite(rec PerformanceRecord) error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"salesTarget", &rec.SalesTarget},
		{"salesAchieved", &rec.SalesAchieved},
		{"clientRetentionRate", rec.ClientRetentionRate},
		{"customerSatisfactionScore", rec.CustomerSatisfactionScore},
		{"attendanceScore", &rec.AttendanceScore},
		{"qualityScore", &rec.QualityScore},
	}
	for _, f := range fields {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 0)) {
			return &InvalidValueError{Field: f.name, Value: *f.v}
		}
	}
	return nil
}
