package ports

import (
	"context"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

// QueryRewriter turns a raw query plus bounded history into the canonical
// rewritten form. The int return is the tokenizer-counted size of the prompts
// and completion exchanged with the model.
type QueryRewriter interface {
	Reword(ctx context.Context, query string, history []string) (domain.RewrittenQuery, int, error)
}

// PassageRetriever returns a fused ranking of at most limit passages for the
// classification's partition.
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string, classification domain.Classification, limit int) ([]domain.RetrievedPassage, error)
}

// ResponseGenerator composes the grounded answer from retrieved passage
// contents. The int return is token usage, as in QueryRewriter.
type ResponseGenerator interface {
	Generate(ctx context.Context, query string, passages []string) (string, int, error)
}
