package ports

import (
	"context"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

// ChatCompleter is the stateless LLM boundary. All context travels in the two
// prompts; the service keeps no session memory.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Embedder builds vectors for query and answer text. The same model must be
// used at ingestion and query time or similarity scores are meaningless.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher runs ranked searches over one collection, filtered
// server-side to a classification partition.
type VectorSearcher interface {
	SearchDense(ctx context.Context, queryVector []float32, classification domain.Classification, limit int) ([]domain.RetrievedPassage, error)
	SearchLexical(ctx context.Context, queryText string, classification domain.Classification, limit int) ([]domain.RetrievedPassage, error)
}

// TokenCounter counts tokens with the fixed encoding used for both history
// budgeting and telemetry accounting.
type TokenCounter interface {
	Count(text string) int
}

// TelemetrySink persists one usage row per completed turn. A row stays open
// for a rating amendment until the next Append or Close finalizes it.
type TelemetrySink interface {
	Append(ctx context.Context, turnID string, record domain.TelemetryRecord) error
	AmendRating(ctx context.Context, turnID string, rating int) error
	Close() error
}
