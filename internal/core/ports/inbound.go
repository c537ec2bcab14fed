package ports

import (
	"context"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

// ChatService is the inbound contract for one conversation session. Ask
// returns the turn handle the feedback call must reference.
type ChatService interface {
	Ask(ctx context.Context, query string) (*domain.Answer, string, error)
	RecordFeedback(ctx context.Context, turnID string, rating int) error
}

// Evaluator batch-scores a labeled dataset through the query pipeline.
type Evaluator interface {
	Evaluate(ctx context.Context, entries []domain.EvaluationEntry) (*domain.EvaluationReport, error)
}
