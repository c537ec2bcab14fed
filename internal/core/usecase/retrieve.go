package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

// HybridRetrieveUseCase runs the dense and lexical branches against the same
// collection partition and fuses them into one ranking.
type HybridRetrieveUseCase struct {
	embedder ports.Embedder
	searcher ports.VectorSearcher
	rrfK     int
}

func NewHybridRetrieveUseCase(embedder ports.Embedder, searcher ports.VectorSearcher, rrfK int) *HybridRetrieveUseCase {
	if rrfK <= 0 {
		rrfK = 60
	}
	return &HybridRetrieveUseCase{
		embedder: embedder,
		searcher: searcher,
		rrfK:     rrfK,
	}
}

func (uc *HybridRetrieveUseCase) Retrieve(
	ctx context.Context,
	query string,
	classification domain.Classification,
	limit int,
) ([]domain.RetrievedPassage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidArgument, "retrieve", fmt.Errorf("query is empty"))
	}
	if limit <= 0 {
		limit = 3
	}

	// Scatter/gather: both branches are independent and run concurrently, but
	// fusion waits for both to finish or fail.
	type branchResult struct {
		passages []domain.RetrievedPassage
		err      error
	}

	denseCh := make(chan branchResult, 1)
	lexicalCh := make(chan branchResult, 1)

	go func() {
		vector, err := uc.embedder.EmbedQuery(ctx, query)
		if err != nil {
			denseCh <- branchResult{err: domain.WrapError(domain.ErrUpstreamUnavailable, "retrieve", fmt.Errorf("embed query: %w", err))}
			return
		}
		passages, err := uc.searcher.SearchDense(ctx, vector, classification, limit)
		if err != nil {
			denseCh <- branchResult{err: domain.WrapError(domain.ErrUpstreamUnavailable, "retrieve", fmt.Errorf("dense search: %w", err))}
			return
		}
		denseCh <- branchResult{passages: passages}
	}()

	go func() {
		passages, err := uc.searcher.SearchLexical(ctx, query, classification, limit)
		if err != nil {
			lexicalCh <- branchResult{err: domain.WrapError(domain.ErrUpstreamUnavailable, "retrieve", fmt.Errorf("lexical search: %w", err))}
			return
		}
		lexicalCh <- branchResult{passages: passages}
	}()

	dense := <-denseCh
	lexical := <-lexicalCh
	if dense.err != nil {
		return nil, dense.err
	}
	if lexical.err != nil {
		return nil, lexical.err
	}

	fused := fuseRankingsRRF(dense.passages, lexical.passages, uc.rrfK)
	return trimRanking(fused, limit), nil
}
