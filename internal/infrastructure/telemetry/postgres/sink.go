package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

// Sink stores telemetry rows in Postgres so the dashboard can aggregate
// token usage, stage latencies and ratings downstream. Unlike the CSV log
// rows are keyed by turn id, so a rating amendment targets exactly one row.
type Sink struct {
	db *sql.DB
}

func NewSink(db *sql.DB) *Sink {
	return &Sink{db: db}
}

func (s *Sink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS telemetry (
    turn_id              TEXT PRIMARY KEY,
    ts                   TIMESTAMPTZ NOT NULL,
    used_tokens          INTEGER NOT NULL,
    reword_ms            BIGINT NOT NULL,
    rag_ms               BIGINT NOT NULL,
    generation_ms        BIGINT NOT NULL,
    full_response_ms     BIGINT NOT NULL,
    query_classification TEXT NOT NULL,
    query_cnt            INTEGER NOT NULL,
    rating               INTEGER
)
`)
	if err != nil {
		return fmt.Errorf("ensure telemetry schema: %w", err)
	}
	return nil
}

func (s *Sink) Append(ctx context.Context, turnID string, record domain.TelemetryRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO telemetry (turn_id, ts, used_tokens, reword_ms, rag_ms, generation_ms, full_response_ms, query_classification, query_cnt, rating)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`, turnID, record.Timestamp, record.UsedTokens,
		record.RewordTime.Milliseconds(), record.RAGTime.Milliseconds(),
		record.GenerationTime.Milliseconds(), record.FullTime.Milliseconds(),
		string(record.Classification), record.QueryCount, ratingValue(record.Rating))
	if err != nil {
		return fmt.Errorf("insert telemetry row: %w", err)
	}
	return nil
}

func (s *Sink) AmendRating(ctx context.Context, turnID string, rating int) error {
	result, err := s.db.ExecContext(ctx, `
UPDATE telemetry
SET rating = $2
WHERE turn_id = $1
`, turnID, rating)
	if err != nil {
		return fmt.Errorf("amend telemetry rating: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("amend telemetry rating rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("telemetry row not found: turn=%s", turnID)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}

// SummarizeUsage feeds the dashboard boundary with the aggregations it
// renders: query and token totals, mean end-to-end latency, rating counts.
func (s *Sink) SummarizeUsage(ctx context.Context) (domain.UsageSummary, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(used_tokens), 0),
       COALESCE(AVG(full_response_ms), 0),
       COUNT(*) FILTER (WHERE rating = 1),
       COUNT(*) FILTER (WHERE rating = 0)
FROM telemetry
`)

	var summary domain.UsageSummary
	var meanFullMs float64
	if err := row.Scan(&summary.Queries, &summary.TotalTokens, &meanFullMs, &summary.PositiveRatings, &summary.NegativeRatings); err != nil {
		return domain.UsageSummary{}, fmt.Errorf("summarize usage: %w", err)
	}
	summary.MeanFullTime = time.Duration(meanFullMs * float64(time.Millisecond))
	return summary, nil
}

// ratingValue maps the unset sentinel to NULL so aggregations can count
// rated rows only.
func ratingValue(rating int) any {
	if rating == domain.RatingUnset {
		return nil
	}
	return rating
}
