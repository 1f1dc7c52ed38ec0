package client

import "fmt"

// Endpoint paths, relative to the base URL.
const (
	pathRegister      = "/auth/register"
	pathLogin         = "/auth/login"
	pathRefreshToken  = "/auth/refresh-token"
	pathValidateToken = "/auth/validate-token"

	pathClients            = "/clients"
	pathClientsByInsurance = "/clients/insurance-type"
	pathClientsByStatus    = "/clients/policy-status"
	pathExpiringPolicies   = "/clients/expiring-policies"

	pathAttendance     = "/attendance"
	pathCheckIn        = "/attendance/check-in"
	pathTeamAttendance = "/attendance/team"

	pathPerformance     = "/performance"
	pathTeamPerformance = "/performance/team"
)

func clientPath(id int64) string     { return fmt.Sprintf("%s/%d", pathClients, id) }
func attendancePath(id int64) string { return fmt.Sprintf("%s/%d", pathAttendance, id) }
func checkOutPath(id int64) string   { return fmt.Sprintf("%s/%d/check-out", pathAttendance, id) }
func statusPath(id int64) string     { return fmt.Sprintf("%s/%d/status", pathAttendance, id) }
func performancePath(id int64) string {
	return fmt.Sprintf("%s/%d", pathPerformance, id)
}
func feedbackPath(id int64) string { return fmt.Sprintf("%s/%d/feedback", pathPerformance, id) }

func summaryPath(year, month int) string {
	return fmt.Sprintf("%s/summary/%d/%d", pathAttendance, year, month)
}
