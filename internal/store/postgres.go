// Package store persists screening results.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/trendscreen/internal/contracts"
)

// ErrNotFound means no run matched the lookup.
var ErrNotFound = errors.New("screening run not found")

// Schema creates the result tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS screener_runs (
	run_id       UUID PRIMARY KEY,
	config_hash  TEXT        NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL,
	universe     INT         NOT NULL,
	partial      BOOLEAN     NOT NULL DEFAULT FALSE,
	skipped      TEXT[]      NOT NULL DEFAULT '{}',
	filter_stats JSONB       NOT NULL,
	trend_stats  JSONB       NOT NULL,
	trend_states JSONB       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS screener_runs_finished_idx ON screener_runs (finished_at DESC);

CREATE TABLE IF NOT EXISTS screener_scores (
	run_id          UUID    NOT NULL REFERENCES screener_runs (run_id) ON DELETE CASCADE,
	ticker          TEXT    NOT NULL,
	rank            INT     NOT NULL,
	liquidity_score NUMERIC NOT NULL,
	trend_score     NUMERIC NOT NULL,
	trend_breakdown JSONB   NOT NULL,
	signal_score    NUMERIC NOT NULL,
	composite_score NUMERIC NOT NULL,
	signals         TEXT[]  NOT NULL DEFAULT '{}',
	confidence      TEXT    NOT NULL,
	PRIMARY KEY (run_id, ticker)
);

CREATE TABLE IF NOT EXISTS screener_rejections (
	run_id  UUID  NOT NULL REFERENCES screener_runs (run_id) ON DELETE CASCADE,
	ticker  TEXT  NOT NULL,
	filter  TEXT  NOT NULL,
	reason  TEXT  NOT NULL,
	results JSONB NOT NULL,
	PRIMARY KEY (run_id, ticker)
);
`

// PostgresStore keeps runs in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new result repository
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Save writes the run, its scores and its rejections in one transaction.
func (s *PostgresStore) Save(ctx context.Context, r *contracts.ScreeningResult) error {
	filterStats, err := json.Marshal(r.FilterStats)
	if err != nil {
		return fmt.Errorf("failed to marshal filter stats: %w", err)
	}
	trendStats, err := json.Marshal(r.TrendStats)
	if err != nil {
		return fmt.Errorf("failed to marshal trend stats: %w", err)
	}
	trendStates, err := json.Marshal(r.TrendStates)
	if err != nil {
		return fmt.Errorf("failed to marshal trend states: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO screener_runs (
			run_id, config_hash, started_at, finished_at, universe,
			partial, skipped, filter_stats, trend_stats, trend_states
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.RunID, r.ConfigHash, r.StartedAt, r.FinishedAt, r.Universe,
		r.Partial, nonNil(r.Skipped), filterStats, trendStats, trendStates)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rec := range r.Ranked {
		breakdown, err := json.Marshal(rec.TrendBreakdown)
		if err != nil {
			return fmt.Errorf("failed to marshal breakdown of %s: %w", rec.Ticker, err)
		}
		batch.Queue(`
			INSERT INTO screener_scores (
				run_id, ticker, rank, liquidity_score, trend_score, trend_breakdown,
				signal_score, composite_score, signals, confidence
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, r.RunID, rec.Ticker, rec.Rank, rec.LiquidityScore, rec.TrendScore, breakdown,
			rec.SignalScore, rec.CompositeScore, nonNil(rec.Signals), string(rec.Confidence))
	}

	for ticker, results := range r.Rejected {
		if len(results) == 0 {
			continue
		}
		encoded, err := json.Marshal(results)
		if err != nil {
			return fmt.Errorf("failed to marshal rejection of %s: %w", ticker, err)
		}
		last := results[len(results)-1]
		batch.Queue(`
			INSERT INTO screener_rejections (run_id, ticker, filter, reason, results)
			VALUES ($1, $2, $3, $4, $5)
		`, r.RunID, ticker, last.Filter, last.Reason, encoded)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert run rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Latest returns the most recently finished run.
func (s *PostgresStore) Latest(ctx context.Context) (*contracts.ScreeningResult, error) {
	var runID string
	err := s.pool.QueryRow(ctx,
		`SELECT run_id::text FROM screener_runs ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return s.Get(ctx, runID)
}

// Get loads one run with its scores ordered by rank.
func (s *PostgresStore) Get(ctx context.Context, runID string) (*contracts.ScreeningResult, error) {
	r := &contracts.ScreeningResult{
		RunID:    runID,
		Rejected: make(map[string][]contracts.FilterResult),
	}

	var filterStats, trendStats, trendStates []byte
	err := s.pool.QueryRow(ctx, `
		SELECT config_hash, started_at, finished_at, universe, partial, skipped,
		       filter_stats, trend_stats, trend_states
		FROM screener_runs
		WHERE run_id::text = $1
	`, runID).Scan(
		&r.ConfigHash, &r.StartedAt, &r.FinishedAt, &r.Universe, &r.Partial, &r.Skipped,
		&filterStats, &trendStats, &trendStates,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal(filterStats, &r.FilterStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filter stats: %w", err)
	}
	if err := json.Unmarshal(trendStats, &r.TrendStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trend stats: %w", err)
	}
	if err := json.Unmarshal(trendStates, &r.TrendStates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trend states: %w", err)
	}
	if len(r.Skipped) == 0 {
		r.Skipped = nil
	}

	if r.Ranked, err = s.scores(ctx, runID); err != nil {
		return nil, err
	}
	if err := s.rejections(ctx, runID, r.Rejected); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) scores(ctx context.Context, runID string) ([]contracts.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, rank, liquidity_score::float8, trend_score::float8, trend_breakdown,
		       signal_score::float8, composite_score::float8, signals, confidence
		FROM screener_scores
		WHERE run_id::text = $1
		ORDER BY rank ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.ScoreRecord, 0)
	for rows.Next() {
		var (
			rec        contracts.ScoreRecord
			breakdown  []byte
			confidence string
		)
		if err := rows.Scan(
			&rec.Ticker, &rec.Rank, &rec.LiquidityScore, &rec.TrendScore, &breakdown,
			&rec.SignalScore, &rec.CompositeScore, &rec.Signals, &confidence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		if err := json.Unmarshal(breakdown, &rec.TrendBreakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
		}
		if len(rec.Signals) == 0 {
			rec.Signals = nil
		}
		rec.Confidence = contracts.Confidence(confidence)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score rows: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) rejections(ctx context.Context, runID string, into map[string][]contracts.FilterResult) error {
	rows, err := s.pool.Query(ctx,
		`SELECT ticker, results FROM screener_rejections WHERE run_id::text = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to query rejections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ticker  string
			encoded []byte
		)
		if err := rows.Scan(&ticker, &encoded); err != nil {
			return fmt.Errorf("failed to scan rejection row: %w", err)
		}
		var results []contracts.FilterResult
		if err := json.Unmarshal(encoded, &results); err != nil {
			return fmt.Errorf("failed to unmarshal rejection of %s: %w", ticker, err)
		}
		into[ticker] = results
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rejection rows: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
