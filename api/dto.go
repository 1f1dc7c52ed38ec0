/*
dto.go - Request and response bodies of the metrics gateway

NAMING CONVENTION:
  - *Input: request bodies of the POST /api/metrics/* calculators
  - *View:  a backend record together with the metrics derived from it
  - *DTO:   other response types

  Backend records are passed through as the client package decodes them, so
  a front-end sees the same field names whether it calls the backend or
  the gateway.

SEE ALSO:
  - handlers.go: Uses these types
  - client/dto.go: backend record shapes
*/
package api

import (
	"github.com/goccy/go-json"

	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/metrics"
	"github.com/prime/backoffice/store/sqlite"
)

// =============================================================================
// CALCULATOR INPUTS
// =============================================================================

// AttendanceInput is an attendance record as the front-end holds it.
// Zone-less timestamps are read in the gateway's configured zone.
type AttendanceInput struct {
	CheckInTime  string                   `json:"checkInTime"`
	CheckOutTime *string                  `json:"checkOutTime,omitempty"`
	Status       metrics.AttendanceStatus `json:"status"`
}

// PolicyInput is the policy part of a client record. AsOf (YYYY-MM-DD)
// replaces today when set.
type PolicyInput struct {
	PolicyEndDate string               `json:"policyEndDate"`
	PolicyStatus  metrics.PolicyStatus `json:"policyStatus"`
	AsOf          string               `json:"asOf,omitempty"`
}

// =============================================================================
// VIEWS
// =============================================================================

type AttendanceView struct {
	Attendance client.AttendanceResponse `json:"attendance"`
	Metrics    metrics.AttendanceMetrics `json:"metrics"`
}

// ClientPolicyView carries either Metrics or Error, never both.
type ClientPolicyView struct {
	Client  client.ClientResponse  `json:"client"`
	Metrics *metrics.PolicyMetrics `json:"metrics,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type PerformanceView struct {
	Performance client.PerformanceResponse `json:"performance"`
	Metrics     metrics.PerformanceMetrics `json:"metrics"`
}

// =============================================================================
// OTHER RESPONSES
// =============================================================================

// SnapshotDTO is an archived metric. Metrics holds the JSON the gateway
// returned when the snapshot was taken.
type SnapshotDTO struct {
	ID         string          `json:"id"`
	Kind       sqlite.Kind     `json:"kind"`
	SubjectID  int64           `json:"subjectId"`
	AgentID    int64           `json:"agentId,omitempty"`
	Period     string          `json:"period"`
	ComputedAt string          `json:"computedAt"`
	Metrics    json.RawMessage `json:"metrics"`
	Score      *float64        `json:"score,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Snapshots bool   `json:"snapshots"`
	Time      string `json:"time"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
