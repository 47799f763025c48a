// Package metrics persists per-call LLM usage so cost and latency stay
// observable over time.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shoppr/internal/llm"
)

// Store handles persistence of LLM call records to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore wraps an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordCall saves one gateway call. It satisfies llm.Recorder.
func (s *Store) RecordCall(ctx context.Context, meta llm.CallMeta) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_calls
			(request_id, agent, model, prompt_tokens, completion_tokens, latency_ms, cost_usd, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RequestID,
		meta.Agent,
		meta.Usage.Model,
		meta.Usage.PromptTokens,
		meta.Usage.CompletionTokens,
		meta.Latency.Milliseconds(),
		meta.Usage.CostUSD,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert llm call: %w", err)
	}
	return nil
}

// DailyUsage represents token and cost totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalCostUSD    float64
	Calls           int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(timestamp), SUM(prompt_tokens), SUM(completion_tokens), SUM(cost_usd), COUNT(*)
		FROM llm_calls
		WHERE timestamp >= ?
		GROUP BY date(timestamp)
		ORDER BY date(timestamp) DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var usage []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalPrompt, &u.TotalCompletion, &u.TotalCostUSD, &u.Calls); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// Cleanup removes call records older than the given number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM llm_calls WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up llm calls: %w", err)
	}
	return res.RowsAffected()
}
