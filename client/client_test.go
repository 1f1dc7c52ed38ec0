package client_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/metrics"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const testToken = "access-123"

// newBackend serves routes under /api/v1 and returns a client pointed at it.
func newBackend(t *testing.T, routes func(r chi.Router)) *client.Client {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api/v1", routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/api/v1", client.WithLocation(time.UTC))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func strPtr(s string) *string { return &s }

// =============================================================================
// TRANSPORT
// =============================================================================

func TestClient_SendsStandardHeaders(t *testing.T) {
	var got http.Header
	c := newBackend(t, func(r chi.Router) {
		r.Get("/clients", func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			writeJSON(w, http.StatusOK, []client.ClientResponse{})
		})
	})

	_, err := c.ListClients(context.Background(), testToken)

	require.NoError(t, err)
	assert.Equal(t, "Bearer "+testToken, got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestClient_ErrorBodyBecomesAPIError(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"status":  404,
				"error":   "Not Found",
				"message": "Client not found with id: 42",
			})
		})
	})

	_, err := c.GetClient(context.Background(), testToken, 42)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Client not found with id: 42", apiErr.Message)
	assert.Equal(t, "Not Found", apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.True(t, client.IsNotFound(err))
	assert.False(t, client.IsUnauthorized(err))
}

func TestClient_NonJSONErrorBodyUsesDefaultMessage(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/performance", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>upstream down</html>")
		})
	})

	_, err := c.ListPerformance(context.Background(), testToken)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "An error occurred", apiErr.Message)
}

func TestClient_ValidationDetails(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Post("/performance", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Validation Failed",
				"message": "Invalid input parameters",
				"details": map[string]string{"salesTarget": "must be positive"},
			})
		})
	})

	_, err := c.CreatePerformance(context.Background(), testToken, client.PerformanceRequest{})

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "must be positive", apiErr.Details["salesTarget"])
	assert.Contains(t, apiErr.Error(), "Validation Failed")
}

func TestClient_ForbiddenAndUnauthorized(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/attendance/team", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "Access denied"})
		})
		r.Get("/attendance", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Your session has expired. Please login again."})
		})
	})
	ctx := context.Background()

	_, err := c.TeamAttendance(ctx, testToken, time.Now())
	assert.True(t, client.IsForbidden(err))

	_, err = c.ListAttendance(ctx, testToken)
	assert.True(t, client.IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Get("/clients", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []client.ClientResponse{})
		})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListClients(ctx, testToken)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, client.StatusOf(err))
}

// =============================================================================
// AUTH
// =============================================================================

func TestClient_HTTPClientOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []client.ClientResponse{})
	}))
	t.Cleanup(srv.Close)

	t.Run("timeout leaves the caller's client untouched", func(t *testing.T) {
		hc := &http.Client{Timeout: time.Minute}
		c := client.New(srv.URL, client.WithHTTPClient(hc), client.WithTimeout(time.Second))

		_, err := c.ListClients(context.Background(), testToken)

		require.NoError(t, err)
		assert.Equal(t, time.Minute, hc.Timeout)
	})

	t.Run("nil client keeps the default", func(t *testing.T) {
		c := client.New(srv.URL, client.WithHTTPClient(nil), client.WithTimeout(time.Second))

		_, err := c.ListClients(context.Background(), testToken)

		assert.NoError(t, err)
	})
}

func TestClient_LoginAndValidate(t *testing.T) {
	c := newBackend(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var req client.AuthRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Password != "secret" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
				return
			}
			writeJSON(w, http.StatusOK, client.AuthResponse{
				AccessToken:  testToken,
				RefreshToken: "refresh-1",
				TokenType:    "Bearer",
				Email:        req.Email,
				Roles:        []client.Role{{ID: 1, Name: "ROLE_AGENT"}},
			})
		})
		r.Get("/auth/validate-token", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
	})
	ctx := context.Background()

	auth, err := c.Login(ctx, client.AuthRequest{Email: "agent@prime.rw", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, testToken, auth.AccessToken)
	assert.Equal(t, "ROLE_AGENT", auth.Roles[0].Name)

	_, err = c.Login(ctx, client.AuthRequest{Email: "agent@prime.rw", Password: "wrong"})
	assert.True(t, client.IsUnauthorized(err))

	ok, err := c.ValidateToken(ctx, testToken)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.ValidateToken(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_RegisterValidatesLocally(t *testing.T) {
	var calls atomic.Int32
	c := newBackend(t, func(r chi.Router) {
		r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusOK, client.AuthResponse{})
		})
	})

	_, err := c.Register(context.Background(), client.RegisterRequest{
		FirstName:   "Aline",
		Email:       "not-an-email",
		Password:    "pw",
		PhoneNumber: "0788",
	})

	var v *client.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "lastName")
	assert.Contains(t, v.Fields, "email")
	assert.Contains(t, v.Fields, "phoneNumber")
	assert.Zero(t, calls.Load(), "invalid request must not reach the backend")
}

// =============================================================================
// CLIENTS
// =============================================================================

func TestClient_ClientCRUD(t *testing.T) {
	var updateBody map[string]any
	c := newBackend(t, func(r chi.Router) {
		r.Post("/clients", func(w http.ResponseWriter, r *http.Request) {
			var req client.ClientRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeJSON(w, http.StatusCreated, client.ClientResponse{ID: 7, Name: req.Name, PolicyEndDate: strPtr(req.PolicyEndDate)})
		})
		r.Put("/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updateBody))
			writeJSON(w, http.StatusOK, client.ClientResponse{ID: 7, Name: "Renamed"})
		})
		r.Delete("/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "7", chi.URLParam(r, "id"))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	ctx := context.Background()

	created, err := c.CreateClient(ctx, testToken, client.ClientRequest{
		Name:          "Jean Bosco",
		NationalID:    "1199080012345678",
		PhoneNumber:   "+250788123456",
		Location:      "Kigali",
		InsuranceType: client.InsuranceHealth,
		PolicyEndDate: "2027-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)

	name := "Renamed"
	updated, err := c.UpdateClient(ctx, testToken, 7, client.ClientUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, map[string]any{"name": "Renamed"}, updateBody, "partial update sends only set fields")

	require.NoError(t, c.DeleteClient(ctx, testToken, 7))
}

func TestClient_ClientFilters(t *testing.T) {
	var paths []string
	c := newBackend(t, func(r chi.Router) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			writeJSON(w, http.StatusOK, []client.ClientResponse{{ID: 1}})
		}
		r.Get("/clients/insurance-type/{type}", handler)
		r.Get("/clients/policy-status/{status}", handler)
		r.Get("/clients/expiring-policies", handler)
	})
	ctx := context.Background()

	_, err := c.ClientsByInsuranceType(ctx, testToken, client.InsuranceAuto)
	require.NoError(t, err)
	_, err = c.ClientsByPolicyStatus(ctx, testToken, metrics.PolicyActive)
	require.NoError(t, err)
	expiring, err := c.ExpiringPolicies(ctx, testToken)
	require.NoError(t, err)

	assert.Len(t, expiring, 1)
	assert.Equal(t, []string{
		"/api/v1/clients/insurance-type/AUTO",
		"/api/v1/clients/policy-status/ACTIVE",
		"/api/v1/clients/expiring-policies",
	}, paths)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestClient_AttendanceFlow(t *testing.T) {
	var checkOutBody, statusBody map[string]string
	var teamDate string
	c := newBackend(t, func(r chi.Router) {
		r.Post("/attendance/check-in", func(w http.ResponseWriter, r *http.Request) {
			var req client.AttendanceRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeJSON(w, http.StatusOK, client.AttendanceResponse{ID: 3, CheckInTime: req.CheckInTime, Status: req.Status})
		})
		r.Put("/attendance/{id}/check-out", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&checkOutBody))
			writeJSON(w, http.StatusOK, client.AttendanceResponse{ID: 3, CheckOutTime: strPtr(checkOutBody["checkOutTime"])})
		})
		r.Put("/attendance/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&statusBody))
			writeJSON(w, http.StatusOK, client.AttendanceResponse{ID: 3, Status: metrics.AttendanceStatus(statusBody["status"])})
		})
		r.Get("/attendance/team", func(w http.ResponseWriter, r *http.Request) {
			teamDate = r.URL.Query().Get("date")
			writeJSON(w, http.StatusOK, []client.AttendanceResponse{{ID: 3}, {ID: 4}})
		})
		r.Get("/attendance/summary/{year}/{month}", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2026", chi.URLParam(r, "year"))
			assert.Equal(t, "3", chi.URLParam(r, "month"))
			writeJSON(w, http.StatusOK, client.AttendanceSummary{TotalDaysThisMonth: 22, PresentDays: 20})
		})
	})
	ctx := context.Background()

	in, err := c.CheckIn(ctx, testToken, client.AttendanceRequest{
		CheckInTime:  "2026-03-10T06:45:00",
		Status:       metrics.AttendancePresent,
		WorkLocation: "Kigali HQ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), in.ID)

	_, err = c.CheckOut(ctx, testToken, 3, time.Date(2026, 3, 10, 15, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10T15:45:00", checkOutBody["checkOutTime"])

	_, err = c.UpdateAttendanceStatus(ctx, testToken, 3, metrics.AttendanceHalfDay, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "HALF_DAY"}, statusBody)

	team, err := c.TeamAttendance(ctx, testToken, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, team, 2)
	assert.Equal(t, "2026-03-10", teamDate)

	summary, err := c.MonthlySummary(ctx, testToken, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.PresentDays)

	_, err = c.MonthlySummary(ctx, testToken, 2026, 13)
	assert.Error(t, err)
}

// =============================================================================
// PERFORMANCE
// =============================================================================

func TestClient_PerformanceFlow(t *testing.T) {
	var query map[string]string
	var feedback map[string]string
	c := newBackend(t, func(r chi.Router) {
		r.Get("/performance/team", func(w http.ResponseWriter, r *http.Request) {
			query = map[string]string{
				"startDate": r.URL.Query().Get("startDate"),
				"endDate":   r.URL.Query().Get("endDate"),
			}
			writeJSON(w, http.StatusOK, []client.PerformanceResponse{{ID: 9, SalesTarget: 100, SalesAchieved: 120}})
		})
		r.Get("/performance/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, client.PerformanceResponse{ID: 9})
		})
		r.Put("/performance/{id}/feedback", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&feedback))
			writeJSON(w, http.StatusOK, client.PerformanceResponse{ID: 9, ManagerFeedback: strPtr(feedback["feedback"])})
		})
		r.Put("/performance/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, client.PerformanceResponse{ID: 9})
		})
	})
	ctx := context.Background()

	team, err := c.TeamPerformance(ctx, testToken,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, map[string]string{"startDate": "2026-01-01", "endDate": "2026-03-31"}, query)

	got, err := c.GetPerformance(ctx, testToken, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)

	target := 150.0
	_, err = c.UpdatePerformance(ctx, testToken, 9, client.PerformanceUpdate{SalesTarget: &target})
	require.NoError(t, err)

	fb, err := c.AddManagerFeedback(ctx, testToken, 9, "Strong quarter")
	require.NoError(t, err)
	assert.Equal(t, "Strong quarter", *fb.ManagerFeedback)
}
