/*
Package sqlite archives computed metrics in SQLite.

PURPOSE:
  The gateway records every metric it computes as an append-only snapshot.
  The archive lets a front-end show history and trends without fetching
  every past record from the back-office API again.

APPEND-ONLY:
  Snapshots are never updated. A recomputation is a new row with a later
  computed_at. Reset exists for tests and local demos only.

KEY TABLES:
  metric_snapshots: one row per computed metric
    kind         attendance | policy | performance
    subject_id   id of the attendance record, client or review
    agent_id     agent the subject belongs to (0 when unknown)
    period       YYYY-MM the metric belongs to, used for trends
    payload_json the metrics as returned to the caller
    score        overall score (performance only)

INDEXES:
  - idx_snapshots_subject: history of one subject (hot path)
  - idx_snapshots_agent_period: performance trend per agent

CONCURRENCY:
  Uses sync.RWMutex around the connection pool. An in-memory database is
  pinned to one connection so every query sees the same data.

USAGE:
  store, err := sqlite.New("./data/snapshots.db")
  if err != nil {
      log.Fatal().Err(err).Msg("open snapshot archive")
  }
  defer store.Close()

SEE ALSO:
  - api/handlers.go: writes snapshots after each computation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// periodLayout is the YYYY-MM bucket snapshots are grouped by.
const periodLayout = "2006-01"

// Kind names the calculator that produced a snapshot.
type Kind string

const (
	KindAttendance  Kind = "attendance"
	KindPolicy      Kind = "policy"
	KindPerformance Kind = "performance"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAttendance, KindPolicy, KindPerformance:
		return true
	}
	return false
}

// ErrInvalidKind is returned when a snapshot or filter names an unknown kind.
var ErrInvalidKind = errors.New("invalid snapshot kind")

// Snapshot is one archived metric.
type Snapshot struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	SubjectID  int64     `json:"subjectId"`
	AgentID    int64     `json:"agentId,omitempty"`
	Period     string    `json:"period"`
	ComputedAt time.Time `json:"computedAt"`
	Payload    []byte    `json:"payload"`
	Score      *float64  `json:"score,omitempty"`
}

// Filter narrows ListSnapshots. Zero fields match everything.
type Filter struct {
	Kind      Kind
	SubjectID int64
	AgentID   int64
	Limit     int
}

// TrendPoint is the average performance score of one agent in one month.
type TrendPoint struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	AverageScore float64    `json:"averageScore"`
	Samples      int        `json:"samples"`
}

// DefaultLimit caps ListSnapshots when the filter sets no limit.
const DefaultLimit = 100

// Store is a SQLite-backed snapshot archive.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the archive at dbPath and migrates its schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metric_snapshots (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('attendance', 'policy', 'performance')),
		subject_id INTEGER NOT NULL,
		agent_id INTEGER NOT NULL DEFAULT 0,
		period TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		score REAL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_subject
		ON metric_snapshots(kind, subject_id, computed_at);
	CREATE INDEX IF NOT EXISTS idx_snapshots_agent_period
		ON metric_snapshots(agent_id, kind, period);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// SaveSnapshot appends snap and returns it with its generated fields set.
// An empty ID gets a fresh uuid, a zero ComputedAt becomes now, and an empty
// Period is taken from ComputedAt.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	if !snap.Kind.Valid() {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidKind, snap.Kind)
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.ComputedAt.IsZero() {
		snap.ComputedAt = time.Now()
	}
	snap.ComputedAt = snap.ComputedAt.UTC()
	if snap.Period == "" {
		snap.Period = snap.ComputedAt.Format(periodLayout)
	}
	if len(snap.Payload) == 0 {
		snap.Payload = []byte("{}")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metric_snapshots (id, kind, subject_id, agent_id, period, computed_at, payload_json, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, string(snap.Kind), snap.SubjectID, snap.AgentID, snap.Period,
		snap.ComputedAt.Format(timeLayout), string(snap.Payload), nullFloat(snap.Score),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns matching snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, f Filter) ([]Snapshot, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, f.Kind)
	}

	var where []string
	var args []any
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.SubjectID != 0 {
		where = append(where, "subject_id = ?")
		args = append(args, f.SubjectID)
	}
	if f.AgentID != 0 {
		where = append(where, "agent_id = ?")
		args = append(args, f.AgentID)
	}

	query := `SELECT id, kind, subject_id, agent_id, period, computed_at, payload_json, score
		FROM metric_snapshots`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY computed_at DESC, id LIMIT ?"

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	args = append(args, limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		var kind, computedAt, payload string
		var score sql.NullFloat64

		if err := rows.Scan(&snap.ID, &kind, &snap.SubjectID, &snap.AgentID,
			&snap.Period, &computedAt, &payload, &score); err != nil {
			return nil, err
		}

		snap.Kind = Kind(kind)
		snap.ComputedAt, _ = time.Parse(timeLayout, computedAt)
		snap.Payload = []byte(payload)
		if score.Valid {
			v := score.Float64
			snap.Score = &v
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// PerformanceTrend returns the monthly average performance score of an
// agent, oldest month first.
func (s *Store) PerformanceTrend(ctx context.Context, agentID int64) ([]TrendPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT period, AVG(score), COUNT(*)
		FROM metric_snapshots
		WHERE agent_id = ? AND kind = ? AND score IS NOT NULL
		GROUP BY period
		ORDER BY period`,
		agentID, string(KindPerformance),
	)
	if err != nil {
		return nil, fmt.Errorf("performance trend: %w", err)
	}
	defer rows.Close()

	points := []TrendPoint{}
	for rows.Next() {
		var period string
		var p TrendPoint
		if err := rows.Scan(&period, &p.AverageScore, &p.Samples); err != nil {
			return nil, err
		}
		month, err := time.Parse(periodLayout, period)
		if err != nil {
			return nil, fmt.Errorf("performance trend: bad period %q: %w", period, err)
		}
		p.Year, p.Month = month.Year(), month.Month()
		points = append(points, p)
	}
	return points, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all snapshots (for tests and demos).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM metric_snapshots")
	return err
}

// PeriodOf returns the YYYY-MM bucket of t on its own wall clock.
func PeriodOf(t time.Time) string {
	return t.Format(periodLayout)
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
