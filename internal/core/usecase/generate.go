package usecase

import (
	"context"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

// GenerateUseCase composes the grounded answer from retrieved passage
// contents. An empty passage list is allowed; the prompt instructs the model
// to use only the supplied content, so it answers that it lacks information.
type GenerateUseCase struct {
	llm    ports.ChatCompleter
	tokens ports.TokenCounter
}

func NewGenerateUseCase(llm ports.ChatCompleter, tokens ports.TokenCounter) *GenerateUseCase {
	return &GenerateUseCase{llm: llm, tokens: tokens}
}

func (uc *GenerateUseCase) Generate(ctx context.Context, query string, passages []string) (string, int, error) {
	userPrompt := buildGroundingPrompt(query, passages)

	answer, err := uc.llm.Complete(ctx, answerSystemPrompt, userPrompt)
	if err != nil {
		return "", 0, domain.WrapError(domain.ErrUpstreamUnavailable, "generate", err)
	}

	used := uc.tokens.Count(answerSystemPrompt) + uc.tokens.Count(userPrompt) + uc.tokens.Count(answer)
	return answer, used, nil
}
