/*
dto.go - Request and response shapes of the back-office API

NAMING CONVENTION:
  - *Request:  request bodies sent to the backend
  - *Update:   partial bodies for PUT, every field optional
  - *Response: bodies returned by the backend

  JSON names are camelCase, matching the backend. Timestamps stay strings on
  the wire; Record methods parse them into metrics records.

TYPES:
  Auth:        AuthRequest, RegisterRequest, Role, AuthResponse
  Clients:     ClientRequest, ClientUpdate, ClientResponse
  Attendance:  AttendanceRequest, AttendanceResponse, AttendanceSummary
  Performance: PerformanceRequest, PerformanceUpdate, PerformanceResponse

SEE ALSO:
  - metrics/types.go: status tags shared with the calculators
  - timestamps.go: wire timestamp parsing
*/
package client

import (
	"fmt"
	"time"

	"github.com/prime/backoffice/metrics"
)

// Status tags are shared with the calculators.
type (
	AttendanceStatus  = metrics.AttendanceStatus
	PolicyStatus      = metrics.PolicyStatus
	PerformanceRating = metrics.PerformanceRating
	AttendanceSummary = metrics.AttendanceSummary
)

type InsuranceType string

const (
	InsuranceLife     InsuranceType = "LIFE"
	InsuranceHealth   InsuranceType = "HEALTH"
	InsuranceAuto     InsuranceType = "AUTO"
	InsuranceProperty InsuranceType = "PROPERTY"
	InsuranceBusiness InsuranceType = "BUSINESS"
)

// =============================================================================
// AUTH
// =============================================================================

type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Roles        []Role `json:"roles"`
	Message      string `json:"message"`
	Type         string `json:"type"`
}

// =============================================================================
// CLIENTS
// =============================================================================

type ClientRequest struct {
	Name            string        `json:"name"`
	NationalID      string        `json:"nationalId"`
	Email           string        `json:"email,omitempty"`
	PhoneNumber     string        `json:"phoneNumber"`
	Address         string        `json:"address,omitempty"`
	Location        string        `json:"location"`
	InsuranceType   InsuranceType `json:"insuranceType"`
	PolicyNumber    string        `json:"policyNumber,omitempty"`
	PolicyStartDate string        `json:"policyStartDate,omitempty"`
	PolicyEndDate   string        `json:"policyEndDate,omitempty"`
	PremiumAmount   *float64      `json:"premiumAmount,omitempty"`
	PolicyStatus    PolicyStatus  `json:"policyStatus,omitempty"`
}

// ClientUpdate is a partial ClientRequest. Nil fields are left unchanged.
type ClientUpdate struct {
	Name            *string        `json:"name,omitempty"`
	NationalID      *string        `json:"nationalId,omitempty"`
	Email           *string        `json:"email,omitempty"`
	PhoneNumber     *string        `json:"phoneNumber,omitempty"`
	Address         *string        `json:"address,omitempty"`
	Location        *string        `json:"location,omitempty"`
	InsuranceType   *InsuranceType `json:"insuranceType,omitempty"`
	PolicyNumber    *string        `json:"policyNumber,omitempty"`
	PolicyStartDate *string        `json:"policyStartDate,omitempty"`
	PolicyEndDate   *string        `json:"policyEndDate,omitempty"`
	PremiumAmount   *float64       `json:"premiumAmount,omitempty"`
	PolicyStatus    *PolicyStatus  `json:"policyStatus,omitempty"`
}

type ClientResponse struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	NationalID      string        `json:"nationalId"`
	Email           *string       `json:"email,omitempty"`
	PhoneNumber     string        `json:"phoneNumber"`
	Address         *string       `json:"address,omitempty"`
	Location        string        `json:"location"`
	InsuranceType   InsuranceType `json:"insuranceType"`
	PolicyNumber    *string       `json:"policyNumber,omitempty"`
	PolicyStartDate *string       `json:"policyStartDate,omitempty"`
	PolicyEndDate   *string       `json:"policyEndDate,omitempty"`
	PremiumAmount   *float64      `json:"premiumAmount,omitempty"`
	PolicyStatus    *PolicyStatus `json:"policyStatus,omitempty"`

	AgentID        int64  `json:"agentId"`
	AgentFirstName string `json:"agentFirstName"`
	AgentLastName  string `json:"agentLastName"`
	AgentEmail     string `json:"agentEmail"`

	DaysUntilExpiration *int     `json:"daysUntilExpiration,omitempty"`
	IsExpiringSoon      *bool    `json:"isExpiringSoon,omitempty"`
	TotalPremiumsPaid   *float64 `json:"totalPremiumsPaid,omitempty"`
	YearsAsClient       *int     `json:"yearsAsClient,omitempty"`
	NeedsRenewal        *bool    `json:"needsRenewal,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Record extracts the policy fields the expiry calculator needs. A missing
// end date yields a zero Date, which the calculator reports as missing input.
func (r ClientResponse) Record() (metrics.ClientPolicyRecord, error) {
	var rec metrics.ClientPolicyRecord
	if r.PolicyStatus != nil {
		rec.Status = *r.PolicyStatus
	}
	if r.PolicyEndDate == nil || *r.PolicyEndDate == "" {
		return rec, nil
	}
	end, err := ParseDate(*r.PolicyEndDate)
	if err != nil {
		return rec, fmt.Errorf("client %d policyEndDate: %w", r.ID, err)
	}
	rec.EndDate = end
	return rec, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceRequest struct {
	CheckInTime  string           `json:"checkInTime"`
	CheckOutTime string           `json:"checkOutTime,omitempty"`
	Status       AttendanceStatus `json:"status"`
	WorkLocation string           `json:"workLocation"`
	Notes        string           `json:"notes,omitempty"`
	IsRemoteWork *bool            `json:"isRemoteWork,omitempty"`
}

type AttendanceResponse struct {
	ID int64 `json:"id"`

	AgentID        int64  `json:"agentId"`
	AgentFirstName string `json:"agentFirstName"`
	AgentLastName  string `json:"agentLastName"`
	AgentEmail     string `json:"agentEmail"`

	ManagerID        *int64  `json:"managerId,omitempty"`
	ManagerFirstName *string `json:"managerFirstName,omitempty"`
	ManagerLastName  *string `json:"managerLastName,omitempty"`
	ManagerEmail     *string `json:"managerEmail,omitempty"`

	CheckInTime      string           `json:"checkInTime"`
	CheckOutTime     *string          `json:"checkOutTime,omitempty"`
	Status           AttendanceStatus `json:"status"`
	WorkLocation     string           `json:"workLocation"`
	Notes            *string          `json:"notes,omitempty"`
	TotalHoursWorked float64          `json:"totalHoursWorked"`

	IsLate          bool `json:"isLate"`
	IsEarlyCheckout bool `json:"isEarlyCheckout"`
	LateMinutes     int  `json:"lateMinutes"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	Summary *AttendanceSummary `json:"summary,omitempty"`
}

// Record parses the wire timestamps in loc. An empty check-in yields a zero
// time, which the calculator reports as missing input.
func (r AttendanceResponse) Record(loc *time.Location) (metrics.AttendanceRecord, error) {
	rec := metrics.AttendanceRecord{Status: r.Status}
	if r.CheckInTime != "" {
		checkIn, err := ParseTimestamp(r.CheckInTime, loc)
		if err != nil {
			return rec, fmt.Errorf("attendance %d checkInTime: %w", r.ID, err)
		}
		rec.CheckIn = checkIn
	}
	if r.CheckOutTime != nil && *r.CheckOutTime != "" {
		checkOut, err := ParseTimestamp(*r.CheckOutTime, loc)
		if err != nil {
			return rec, fmt.Errorf("attendance %d checkOutTime: %w", r.ID, err)
		}
		rec.CheckOut = &checkOut
	}
	return rec, nil
}

// AgentName is "First Last".
func (r AttendanceResponse) AgentName() string {
	return r.AgentFirstName + " " + r.AgentLastName
}

// =============================================================================
// PERFORMANCE
// =============================================================================

type PerformanceRequest struct {
	PeriodStart               string   `json:"periodStart"`
	PeriodEnd                 string   `json:"periodEnd"`
	NewClientsAcquired        int      `json:"newClientsAcquired"`
	PoliciesRenewed           int      `json:"policiesRenewed"`
	TotalPremiumCollected     float64  `json:"totalPremiumCollected"`
	SalesTarget               float64  `json:"salesTarget"`
	SalesAchieved             float64  `json:"salesAchieved"`
	ClientRetentionRate       *float64 `json:"clientRetentionRate,omitempty"`
	CustomerSatisfactionScore *float64 `json:"customerSatisfactionScore,omitempty"`
	AttendanceScore           float64  `json:"attendanceScore"`
	QualityScore              float64  `json:"qualityScore"`
	ManagerFeedback           string   `json:"managerFeedback,omitempty"`
}

// Record returns the scoring inputs of the request.
func (r PerformanceRequest) Record() metrics.PerformanceRecord {
	return metrics.PerformanceRecord{
		SalesTarget:               r.SalesTarget,
		SalesAchieved:             r.SalesAchieved,
		ClientRetentionRate:       r.ClientRetentionRate,
		CustomerSatisfactionScore: r.CustomerSatisfactionScore,
		AttendanceScore:           r.AttendanceScore,
		QualityScore:              r.QualityScore,
	}
}

// PerformanceUpdate is a partial PerformanceRequest. Nil fields are left unchanged.
type PerformanceUpdate struct {
	PeriodStart               *string  `json:"periodStart,omitempty"`
	PeriodEnd                 *string  `json:"periodEnd,omitempty"`
	NewClientsAcquired        *int     `json:"newClientsAcquired,omitempty"`
	PoliciesRenewed           *int     `json:"policiesRenewed,omitempty"`
	TotalPremiumCollected     *float64 `json:"totalPremiumCollected,omitempty"`
	SalesTarget               *float64 `json:"salesTarget,omitempty"`
	SalesAchieved             *float64 `json:"salesAchieved,omitempty"`
	ClientRetentionRate       *float64 `json:"clientRetentionRate,omitempty"`
	CustomerSatisfactionScore *float64 `json:"customerSatisfactionScore,omitempty"`
	AttendanceScore           *float64 `json:"attendanceScore,omitempty"`
	QualityScore              *float64 `json:"qualityScore,omitempty"`
	ManagerFeedback           *string  `json:"managerFeedback,omitempty"`
}

type PerformanceResponse struct {
	ID int64 `json:"id"`

	AgentID        int64  `json:"agentId"`
	AgentFirstName string `json:"agentFirstName"`
	AgentLastName  string `json:"agentLastName"`
	AgentEmail     string `json:"agentEmail"`

	ManagerID        *int64  `json:"managerId,omitempty"`
	ManagerFirstName *string `json:"managerFirstName,omitempty"`
	ManagerLastName  *string `json:"managerLastName,omitempty"`
	ManagerEmail     *string `json:"managerEmail,omitempty"`

	PeriodStart               string            `json:"periodStart"`
	PeriodEnd                 string            `json:"periodEnd"`
	NewClientsAcquired        int               `json:"newClientsAcquired"`
	PoliciesRenewed           int               `json:"policiesRenewed"`
	TotalPremiumCollected     float64           `json:"totalPremiumCollected"`
	SalesTarget               float64           `json:"salesTarget"`
	SalesAchieved             float64           `json:"salesAchieved"`
	AchievementPercentage     float64           `json:"achievementPercentage"`
	ClientRetentionRate       *float64          `json:"clientRetentionRate,omitempty"`
	CustomerSatisfactionScore *float64          `json:"customerSatisfactionScore,omitempty"`
	Rating                    PerformanceRating `json:"rating"`
	ManagerFeedback           *string           `json:"managerFeedback,omitempty"`
	AttendanceScore           float64           `json:"attendanceScore"`
	QualityScore              float64           `json:"qualityScore"`
	OverallScore              float64           `json:"overallScore"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Record returns the scoring inputs of the stored review.
func (r PerformanceResponse) Record() metrics.PerformanceRecord {
	return metrics.PerformanceRecord{
		SalesTarget:               r.SalesTarget,
		SalesAchieved:             r.SalesAchieved,
		ClientRetentionRate:       r.ClientRetentionRate,
		CustomerSatisfactionScore: r.CustomerSatisfactionScore,
		AttendanceScore:           r.AttendanceScore,
		QualityScore:              r.QualityScore,
	}
}

// AgentName is "First Last".
func (r PerformanceResponse) AgentName() string {
	return r.AgentFirstName + " " + r.AgentLastName
}
