package client

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/prime/backoffice/metrics"
)

// Layouts the backend is known to send. Zone-less ones are read in the
// caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses an RFC 3339 timestamp, or a zone-less local one in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseDate parses a YYYY-MM-DD date. Timestamps are reduced to the
// calendar day on their own wall clock.
func ParseDate(s string) (metrics.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := metrics.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := ParseTimestamp(s, time.UTC)
	if err != nil {
		return metrics.Date{}, fmt.Errorf("unrecognized date %q", s)
	}
	return metrics.DateOf(t), nil
}

// FormatDate renders the calendar day of t, on t's own wall clock, as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime renders t as RFC 3339.
func FormatDateTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FormatLocalDateTime renders t without a zone, the way the backend stores it.
func FormatLocalDateTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// =============================================================================
// VALIDATION
// =============================================================================

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool { return emailPattern.MatchString(s) }

// IsValidPhoneNumber reports whether s is an E.164-style number (optional +,
// no leading zero, 2 to 15 digits).
func IsValidPhoneNumber(s string) bool { return phonePattern.MatchString(s) }

// ValidationError lists request fields rejected before sending.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks the fields the backend requires of a new client.
func (r ClientRequest) Validate() error {
	var v ValidationError
	if strings.TrimSpace(r.Name) == "" {
		v.add("name", "required")
	}
	if strings.TrimSpace(r.NationalID) == "" {
		v.add("nationalId", "required")
	}
	if !IsValidPhoneNumber(r.PhoneNumber) {
		v.add("phoneNumber", "invalid phone number")
	}
	if r.Email != "" && !IsValidEmail(r.Email) {
		v.add("email", "invalid email")
	}
	if strings.TrimSpace(r.Location) == "" {
		v.add("location", "required")
	}
	if r.InsuranceType == "" {
		v.add("insuranceType", "required")
	}
	if r.PolicyEndDate != "" {
		if _, err := ParseDate(r.PolicyEndDate); err != nil {
			v.add("policyEndDate", "invalid date")
		}
	}
	return v.orNil()
}

// Validate checks a registration before sending it.
func (r RegisterRequest) Validate() error {
	var v ValidationError
	if strings.TrimSpace(r.FirstName) == "" {
		v.add("firstName", "required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		v.add("lastName", "required")
	}
	if !IsValidEmail(r.Email) {
		v.add("email", "invalid email")
	}
	if r.Password == "" {
		v.add("password", "required")
	}
	if !IsValidPhoneNumber(r.PhoneNumber) {
		v.add("phoneNumber", "invalid phone number")
	}
	return v.orNil()
}
