package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/config"
	"github.com/prime/backoffice/export"
	"github.com/prime/backoffice/metrics"
)

var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func strPtr(s string) *string { return &s }

// run executes agencyctl against a fake backend and returns stdout.
func run(t *testing.T, routes func(r chi.Router), args ...string) (string, error) {
	t.Helper()

	for _, key := range []string{
		config.EnvBaseURL, config.EnvTimeout, config.EnvPort, config.EnvAllowedOrigins,
		config.EnvLogLevel, config.EnvSnapshotDB, EnvToken, EnvPassword,
	} {
		t.Setenv(key, "")
	}
	t.Setenv(config.EnvTimezone, "UTC")

	r := chi.NewRouter()
	r.Route("/api/v1", routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	a := &app{now: func() time.Time { return fixedNow }}
	cmd := a.rootCmd(&out)
	cmd.SetArgs(append([]string{"--base-url", srv.URL + "/api/v1"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestLogin_PrintsToken(t *testing.T) {
	out, err := run(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, client.AuthResponse{AccessToken: "tok-1", Email: "agent@prime.rw"})
		})
	}, "login", "--email", "agent@prime.rw", "--password", "secret")

	require.NoError(t, err)
	assert.Equal(t, "tok-1\n", out)
}

func TestLogin_RequiresCredentials(t *testing.T) {
	_, err := run(t, func(chi.Router) {}, "login", "--email", "agent@prime.rw")

	assert.ErrorContains(t, err, "--password")
}

func TestCommands_RequireToken(t *testing.T) {
	_, err := run(t, func(chi.Router) {}, "clients", "expiring")

	assert.ErrorIs(t, err, errNoToken)
}

func TestClientsExpiring(t *testing.T) {
	active := metrics.PolicyActive
	out, err := run(t, func(r chi.Router) {
		r.Get("/clients/expiring-policies", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(w, []client.ClientResponse{
				{ID: 1, Name: "Jean", PolicyEndDate: strPtr("2026-10-20"), PolicyStatus: &active},
				{ID: 2, Name: "Marie", PolicyStatus: &active},
			})
		})
	}, "--token", "tok", "clients", "expiring")

	require.NoError(t, err)
	assert.Contains(t, out, "DAYS LEFT")
	assert.Regexp(t, `1\s+Jean\s+2026-10-20\s+ACTIVE\s+3\s+yes`, out)
	assert.Regexp(t, `2\s+Marie.*missing input: policyEndDate`, out)
}

func TestClientsStatus(t *testing.T) {
	expired := metrics.PolicyExpired
	out, err := run(t, func(r chi.Router) {
		r.Get("/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "5", chi.URLParam(r, "id"))
			writeJSON(w, client.ClientResponse{
				ID: 5, Name: "Jean", InsuranceType: client.InsuranceAuto,
				PolicyEndDate: strPtr("2026-10-07"), PolicyStatus: &expired,
			})
		})
	}, "--token", "tok", "clients", "status", "5")

	require.NoError(t, err)
	assert.Regexp(t, `Days remaining:\s+-10`, out)
	assert.Regexp(t, `Expired:\s+yes`, out)
	assert.Regexp(t, `Needs renewal:\s+no`, out)

	_, err = run(t, func(chi.Router) {}, "--token", "tok", "clients", "status", "five")
	assert.Error(t, err)
}

func TestAttendanceTeam(t *testing.T) {
	var gotDate string
	out, err := run(t, func(r chi.Router) {
		r.Get("/attendance/team", func(w http.ResponseWriter, r *http.Request) {
			gotDate = r.URL.Query().Get("date")
			writeJSON(w, []client.AttendanceResponse{
				{ID: 1, AgentFirstName: "Aline", AgentLastName: "Uwase", CheckInTime: "2026-03-10T06:45:00",
					CheckOutTime: strPtr("2026-03-10T15:45:00"), Status: metrics.AttendancePresent},
				{ID: 2, AgentFirstName: "Eric", AgentLastName: "Mugisha", Status: metrics.AttendanceAbsent},
			})
		})
	}, "--token", "tok", "attendance", "team", "--date", "2026-03-10")

	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", gotDate)
	assert.Regexp(t, `1\s+Aline Uwase\s+06:45\s+PRESENT\s+15\s+9\.00`, out)
	assert.Regexp(t, `2\s+Eric Mugisha.*missing input: checkInTime`, out)
}

func TestAttendanceSummary_Local(t *testing.T) {
	out, err := run(t, func(r chi.Router) {
		r.Get("/attendance", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []client.AttendanceResponse{
				{ID: 1, CheckInTime: "2026-03-10T06:20:00", CheckOutTime: strPtr("2026-03-10T14:20:00"), Status: metrics.AttendancePresent},
				{ID: 2, CheckInTime: "2026-03-11T07:00:00", CheckOutTime: strPtr("2026-03-11T15:00:00"), Status: metrics.AttendancePresent},
				{ID: 3, CheckInTime: "2026-04-01T06:00:00", Status: metrics.AttendancePresent},
			})
		})
	}, "--token", "tok", "attendance", "summary", "--year", "2026", "--month", "3", "--local")

	// March 2026 has 22 working days; two attended days are 9.09%.
	require.NoError(t, err)
	assert.Regexp(t, `Working days:\s+22`, out)
	assert.Regexp(t, `Present:\s+1\n`, out)
	assert.Regexp(t, `Late:\s+1\n`, out)
	assert.Regexp(t, `Average hours:\s+8\.00`, out)
	assert.Regexp(t, `Attendance:\s+9\.09%`, out)
}

func TestAttendanceSummary_Backend(t *testing.T) {
	out, err := run(t, func(r chi.Router) {
		r.Get("/attendance/summary/{year}/{month}", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "10", chi.URLParam(r, "month"), "defaults to the current month")
			writeJSON(w, client.AttendanceSummary{TotalDaysThisMonth: 22, PresentDays: 12, AttendancePercentage: 54.55})
		})
	}, "--token", "tok", "attendance", "summary")

	require.NoError(t, err)
	assert.Regexp(t, `Month:\s+2026-10`, out)
	assert.Regexp(t, `Attendance:\s+54\.55%`, out)

	_, err = run(t, func(chi.Router) {}, "--token", "tok", "attendance", "summary", "--month", "13")
	assert.ErrorContains(t, err, "out of range")
}

func TestPerformanceTeam(t *testing.T) {
	var start, end string
	out, err := run(t, func(r chi.Router) {
		r.Get("/performance/team", func(w http.ResponseWriter, r *http.Request) {
			start, end = r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate")
			writeJSON(w, []client.PerformanceResponse{
				{ID: 4, AgentFirstName: "Aline", AgentLastName: "Uwase", PeriodStart: "2026-10-01", PeriodEnd: "2026-10-17",
					SalesTarget: 200, SalesAchieved: 150, ClientRetentionRate: f64(100),
					CustomerSatisfactionScore: f64(100), AttendanceScore: 100, QualityScore: 100},
			})
		})
	}, "--token", "tok", "performance", "team")

	require.NoError(t, err)
	assert.Equal(t, "2026-10-01", start)
	assert.Equal(t, "2026-10-17", end)
	assert.Regexp(t, `4\s+Aline Uwase\s+2026-10-01\.\.2026-10-17\s+75\.0%\s+90\.00\s+OUTSTANDING`, out)

	_, err = run(t, func(chi.Router) {}, "--token", "tok", "performance", "team", "--start", "2026-10-10", "--end", "2026-10-01")
	assert.ErrorContains(t, err, "before")
}

func TestExportPerformance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q3.xlsx")
	out, err := run(t, func(r chi.Router) {
		r.Get("/performance/team", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, []client.PerformanceResponse{{ID: 4, SalesTarget: 100, SalesAchieved: 100}})
		})
	}, "--token", "tok", "export", "performance", "--start", "2026-07-01", "--end", "2026-09-30", "--out", path)

	require.NoError(t, err)
	assert.Equal(t, "wrote 1 rows to "+path+"\n", out)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetPerformance)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExport_RejectsUnknownReport(t *testing.T) {
	_, err := run(t, func(chi.Router) {}, "--token", "tok", "export", "payroll")

	assert.Error(t, err)
}

func f64(v float64) *float64 { return &v }
