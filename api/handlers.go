/*
handlers.go - HTTP handlers of the metrics gateway

PURPOSE:
  Lets a browser front-end obtain derived metrics without re-implementing
  the rules in JavaScript. The gateway holds no domain data: it fetches
  records from the back-office API with the caller's bearer token, runs
  the calculators, and optionally archives the result.

ENDPOINTS:
  Calculators (no backend call):
    POST   /api/metrics/attendance        AttendanceInput -> AttendanceMetrics
    POST   /api/metrics/policy            PolicyInput -> PolicyMetrics
    POST   /api/metrics/performance       PerformanceRequest -> PerformanceMetrics

  Enriched records (bearer token forwarded):
    GET    /api/attendance/{id}/metrics   AttendanceView
    GET    /api/clients/{id}/policy-status
    GET    /api/clients/expiring          []ClientPolicyView
    GET    /api/performance/{id}/metrics  PerformanceView

  Archive (needs a snapshot store):
    GET    /api/snapshots?kind=&subject=&agent=&limit=
    GET    /api/agents/{id}/performance-trend

  Reports (bearer token forwarded):
    GET    /api/reports/clients.xlsx
    GET    /api/reports/attendance.xlsx?date=YYYY-MM-DD
    GET    /api/reports/performance.xlsx?startDate=&endDate=

ERROR HANDLING:
  - 400: malformed JSON, bad query or path parameter
  - 401: no bearer token on a route that forwards one
  - 422: the record cannot be computed (metrics input errors)
  - 4xx/5xx from the backend: passed through with the backend's message
  - 502: backend unreachable or returned something unreadable
  - 503: snapshot archive disabled

TODAY:
  Policy countdowns use the handler's clock, read on the client's
  configured wall clock.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/export"
	"github.com/prime/backoffice/metrics"
	"github.com/prime/backoffice/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Client *client.Client
	Store  *sqlite.Store // nil disables the archive
	Logger zerolog.Logger

	now func() time.Time
}

// NewHandler creates a handler. store may be nil.
func NewHandler(c *client.Client, store *sqlite.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		Client: c,
		Store:  store,
		Logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for "today".
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// today is now on the agency's wall clock.
func (h *Handler) today() time.Time {
	return h.now().In(h.Client.Location())
}

// Health reports liveness and whether the archive is enabled.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Snapshots: h.Store != nil,
		Time:      h.now().UTC().Format(time.RFC3339),
	})
}

// =============================================================================
// CALCULATOR HANDLERS
// =============================================================================

// AttendanceMetrics computes lateness and hours of a posted record.
func (h *Handler) AttendanceMetrics(w http.ResponseWriter, r *http.Request) {
	var in AttendanceInput
	if !decodeBody(w, r, &in) {
		return
	}

	rec := metrics.AttendanceRecord{Status: in.Status}
	loc := h.Client.Location()
	if in.CheckInTime != "" {
		t, err := client.ParseTimestamp(in.CheckInTime, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid checkInTime", err)
			return
		}
		rec.CheckIn = t
	}
	if in.CheckOutTime != nil && *in.CheckOutTime != "" {
		t, err := client.ParseTimestamp(*in.CheckOutTime, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid checkOutTime", err)
			return
		}
		rec.CheckOut = &t
	}

	m, err := metrics.CalculateAttendance(rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// PolicyMetrics computes the expiry countdown of a posted policy.
func (h *Handler) PolicyMetrics(w http.ResponseWriter, r *http.Request) {
	var in PolicyInput
	if !decodeBody(w, r, &in) {
		return
	}

	rec := metrics.ClientPolicyRecord{Status: in.PolicyStatus}
	if in.PolicyEndDate != "" {
		end, err := client.ParseDate(in.PolicyEndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid policyEndDate", err)
			return
		}
		rec.EndDate = end
	}

	today := h.today()
	if in.AsOf != "" {
		asOf, err := client.ParseDate(in.AsOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid asOf", err)
			return
		}
		today = asOf.In(h.Client.Location())
	}

	m, err := metrics.CalculatePolicyStatus(rec, today)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// PerformanceMetrics scores a posted review.
func (h *Handler) PerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	var in client.PerformanceRequest
	if !decodeBody(w, r, &in) {
		return
	}

	m, err := metrics.CalculatePerformance(in.Record())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// =============================================================================
// ENRICHED RECORD HANDLERS
// =============================================================================

// GetAttendanceMetrics fetches one attendance record and computes its metrics.
func (h *Handler) GetAttendanceMetrics(w http.ResponseWriter, r *http.Request) {
	token, id, ok := h.tokenAndID(w, r)
	if !ok {
		return
	}

	resp, err := h.Client.GetAttendance(r.Context(), token, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rec, err := resp.Record(h.Client.Location())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := metrics.CalculateAttendance(rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.archive(r.Context(), sqlite.Snapshot{
		Kind:      sqlite.KindAttendance,
		SubjectID: resp.ID,
		AgentID:   resp.AgentID,
		Period:    sqlite.PeriodOf(rec.CheckIn),
	}, m)

	writeJSON(w, http.StatusOK, AttendanceView{Attendance: *resp, Metrics: m})
}

// GetClientPolicyStatus fetches one client and computes its policy countdown.
func (h *Handler) GetClientPolicyStatus(w http.ResponseWriter, r *http.Request) {
	token, id, ok := h.tokenAndID(w, r)
	if !ok {
		return
	}

	resp, err := h.Client.GetClient(r.Context(), token, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := h.policyOf(r.Context(), *resp)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ClientPolicyView{Client: *resp, Metrics: &m})
}

// ListExpiringPolicies enriches the backend's expiring-policy list. A client
// whose metrics cannot be computed is kept with an error message.
func (h *Handler) ListExpiringPolicies(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r)
	if !ok {
		return
	}

	clients, err := h.Client.ExpiringPolicies(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := make([]ClientPolicyView, len(clients))
	for i, c := range clients {
		views[i] = ClientPolicyView{Client: c}
		m, err := h.policyOf(r.Context(), c)
		if err != nil {
			views[i].Error = err.Error()
			continue
		}
		views[i].Metrics = &m
	}
	writeJSON(w, http.StatusOK, views)
}

// GetPerformanceMetrics fetches one review and recomputes its score.
func (h *Handler) GetPerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	token, id, ok := h.tokenAndID(w, r)
	if !ok {
		return
	}

	resp, err := h.Client.GetPerformance(r.Context(), token, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := metrics.CalculatePerformance(resp.Record())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	snap := sqlite.Snapshot{
		Kind:      sqlite.KindPerformance,
		SubjectID: resp.ID,
		AgentID:   resp.AgentID,
		Score:     &m.OverallScore,
	}
	if start, err := client.ParseDate(resp.PeriodStart); err == nil {
		snap.Period = sqlite.PeriodOf(start.In(time.UTC))
	}
	h.archive(r.Context(), snap, m)

	writeJSON(w, http.StatusOK, PerformanceView{Performance: *resp, Metrics: m})
}

func (h *Handler) policyOf(ctx context.Context, c client.ClientResponse) (metrics.PolicyMetrics, error) {
	rec, err := c.Record()
	if err != nil {
		return metrics.PolicyMetrics{}, err
	}
	today := h.today()
	m, err := metrics.CalculatePolicyStatus(rec, today)
	if err != nil {
		return metrics.PolicyMetrics{}, err
	}

	h.archive(ctx, sqlite.Snapshot{
		Kind:      sqlite.KindPolicy,
		SubjectID: c.ID,
		AgentID:   c.AgentID,
		Period:    sqlite.PeriodOf(today),
	}, m)
	return m, nil
}

// =============================================================================
// ARCHIVE HANDLERS
// =============================================================================

// ListSnapshots returns archived metrics, newest first.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	q := r.URL.Query()
	filter := sqlite.Filter{Kind: sqlite.Kind(q.Get("kind"))}
	if filter.Kind != "" && !filter.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid kind", fmt.Errorf("kind %q is not attendance, policy or performance", filter.Kind))
		return
	}

	var err error
	if filter.SubjectID, err = optionalInt(q.Get("subject")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subject", err)
		return
	}
	if filter.AgentID, err = optionalInt(q.Get("agent")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid agent", err)
		return
	}
	limit, err := optionalInt(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit", err)
		return
	}
	filter.Limit = int(limit)

	snaps, err := h.Store.ListSnapshots(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list snapshots", err)
		return
	}

	dtos := make([]SnapshotDTO, len(snaps))
	for i, s := range snaps {
		dtos[i] = SnapshotDTO{
			ID:         s.ID,
			Kind:       s.Kind,
			SubjectID:  s.SubjectID,
			AgentID:    s.AgentID,
			Period:     s.Period,
			ComputedAt: s.ComputedAt.Format(time.RFC3339),
			Metrics:    json.RawMessage(s.Payload),
			Score:      s.Score,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPerformanceTrend returns an agent's monthly average score.
func (h *Handler) GetPerformanceTrend(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	trend, err := h.Store.PerformanceTrend(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute trend", err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// archive stores a snapshot when the archive is enabled. A failed write is
// logged and never fails the request.
func (h *Handler) archive(ctx context.Context, snap sqlite.Snapshot, payload any) {
	if h.Store == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.Logger.Warn().Err(err).Str("kind", string(snap.Kind)).Msg("snapshot not encoded")
		return
	}
	snap.Payload = data
	snap.ComputedAt = h.now()

	if _, err := h.Store.SaveSnapshot(ctx, snap); err != nil {
		h.Logger.Warn().Err(err).
			Str("kind", string(snap.Kind)).
			Int64("subject_id", snap.SubjectID).
			Msg("snapshot not saved")
	}
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "Snapshot archive disabled", nil)
		return false
	}
	return true
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ClientsReport downloads all visible clients with policy metrics.
func (h *Handler) ClientsReport(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r)
	if !ok {
		return
	}

	clients, err := h.Client.ListClients(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	today := h.today()
	f, err := export.ClientsWorkbook(clients, today)
	h.writeWorkbook(w, r, f, err, "clients-"+client.FormatDate(today)+".xlsx")
}

// AttendanceReport downloads the team's attendance for one day (default today).
func (h *Handler) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r)
	if !ok {
		return
	}

	day, err := h.queryDate(r, "date", h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	records, err := h.Client.TeamAttendance(r.Context(), token, day)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	f, err := export.AttendanceWorkbook(records, h.Client.Location())
	h.writeWorkbook(w, r, f, err, "attendance-"+client.FormatDate(day)+".xlsx")
}

// PerformanceReport downloads team reviews between two dates (default:
// start of the current month to today).
func (h *Handler) PerformanceReport(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r)
	if !ok {
		return
	}

	today := h.today()
	monthStart := metrics.StartOfMonth(today.Year(), today.Month()).In(h.Client.Location())

	start, err := h.queryDate(r, "startDate", monthStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	end, err := h.queryDate(r, "endDate", today)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "endDate is before startDate", nil)
		return
	}

	records, err := h.Client.TeamPerformance(r.Context(), token, start, end)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	f, err := export.PerformanceWorkbook(records)
	name := fmt.Sprintf("performance-%s-to-%s.xlsx", client.FormatDate(start), client.FormatDate(end))
	h.writeWorkbook(w, r, f, err, name)
}

func (h *Handler) writeWorkbook(w http.ResponseWriter, r *http.Request, f *excelize.File, err error, filename string) {
	if err != nil {
		h.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("workbook not built")
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		h.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("workbook not written")
	}
}

// queryDate parses a YYYY-MM-DD query parameter as midnight in the client's
// zone, or returns def when the parameter is absent.
func (h *Handler) queryDate(r *http.Request, key string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	d, err := client.ParseDate(v)
	if err != nil {
		return time.Time{}, err
	}
	return d.In(h.Client.Location()), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// fail maps an error to a response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *client.APIError
	switch {
	case metrics.IsInputError(err):
		writeError(w, http.StatusUnprocessableEntity, "Metrics cannot be computed", err)
	case errors.As(err, &apiErr):
		writeError(w, apiErr.Status, apiErr.Message, nil)
	default:
		h.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("backend request failed")
		writeError(w, http.StatusBadGateway, "Backend unavailable", err)
	}
}

func (h *Handler) tokenAndID(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	token, ok := requireToken(w, r)
	if !ok {
		return "", 0, false
	}
	id, ok := pathID(w, r)
	return token, id, ok
}

// requireToken extracts the caller's bearer token for forwarding.
func requireToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
		return "", false
	}
	return token, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", fmt.Errorf("id %q is not a positive integer", raw))
		return 0, false
	}
	return id, true
}

func optionalInt(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// writeJSON encodes before writing the header; a value that cannot be
// encoded is answered with a 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("failed to encode response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
