package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/voyagent/voyagent/internal/agent/core"
)

// ErrNotFound is returned when no archived run matches.
var ErrNotFound = errors.New("store: trip run not found")

// Store archives completed trip runs in Postgres. The full state and
// itinerary go in as JSON documents; only the columns worth querying are
// broken out.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// NewWithDSN opens and verifies a Postgres connection.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{
		db:     db,
		logger: log.New(log.Writer(), "[STORE] ", log.LstdFlags),
	}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// SaveTripRun archives one completed run.
func (s *Store) SaveTripRun(ctx context.Context, result *core.TripResult) error {
	requestJSON, err := json.Marshal(result.Request)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	stateJSON, err := json.Marshal(result.State)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	itineraryJSON, err := json.Marshal(result.Itinerary)
	if err != nil {
		return fmt.Errorf("marshaling itinerary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trip_runs (run_id, origin, destination, start_date, end_date, budget_total, request, state, itinerary, elapsed_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.RunID,
		result.Request.Origin,
		result.Request.Destination,
		result.Request.StartDate,
		result.Request.EndDate,
		result.Request.BudgetTotal,
		requestJSON,
		stateJSON,
		itineraryJSON,
		result.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting trip run: %w", err)
	}
	s.logger.Printf("archived run %s (%s)", result.RunID, result.Request.Destination)
	return nil
}

// GetTripRun loads one archived run by ID.
func (s *Store) GetTripRun(ctx context.Context, runID string) (*core.TripResult, error) {
	var (
		requestJSON   []byte
		stateJSON     []byte
		itineraryJSON []byte
		elapsedMS     int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT request, state, itinerary, elapsed_ms FROM trip_runs WHERE run_id = $1`,
		runID,
	).Scan(&requestJSON, &stateJSON, &itineraryJSON, &elapsedMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading trip run: %w", err)
	}

	result := &core.TripResult{RunID: runID, Elapsed: time.Duration(elapsedMS) * time.Millisecond}
	if err := json.Unmarshal(requestJSON, &result.Request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	result.State = &core.AgentState{}
	if err := json.Unmarshal(stateJSON, result.State); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	result.Itinerary = &core.Itinerary{}
	if err := json.Unmarshal(itineraryJSON, result.Itinerary); err != nil {
		return nil, fmt.Errorf("decoding itinerary: %w", err)
	}
	return result, nil
}

// TripRunSummary is one row of the archive listing.
type TripRunSummary struct {
	RunID       string    `json:"run_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	BudgetTotal float64   `json:"budget_total"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListTripRuns returns the most recent archived runs.
func (s *Store) ListTripRuns(ctx context.Context, limit int) ([]TripRunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, origin, destination, start_date, end_date, budget_total, created_at
		FROM trip_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing trip runs: %w", err)
	}
	defer rows.Close()

	var out []TripRunSummary
	for rows.Next() {
		var r TripRunSummary
		if err := rows.Scan(&r.RunID, &r.Origin, &r.Destination, &r.StartDate, &r.EndDate, &r.BudgetTotal, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning trip run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
