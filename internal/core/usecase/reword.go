package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

// RewordUseCase rewrites a raw user query into retrieval form and classifies
// it into one of the canonical partitions.
type RewordUseCase struct {
	llm    ports.ChatCompleter
	tokens ports.TokenCounter
}

func NewRewordUseCase(llm ports.ChatCompleter, tokens ports.TokenCounter) *RewordUseCase {
	return &RewordUseCase{llm: llm, tokens: tokens}
}

func (uc *RewordUseCase) Reword(ctx context.Context, query string, history []string) (domain.RewrittenQuery, int, error) {
	if strings.TrimSpace(query) == "" {
		return domain.RewrittenQuery{}, 0, domain.WrapError(domain.ErrInvalidArgument, "reword", fmt.Errorf("query is empty"))
	}

	userPrompt := buildRewordUserPrompt(query, history)

	raw, err := uc.llm.Complete(ctx, rewordSystemPrompt, userPrompt)
	if err != nil {
		return domain.RewrittenQuery{}, 0, domain.WrapError(domain.ErrUpstreamUnavailable, "reword", err)
	}

	used := uc.tokens.Count(rewordSystemPrompt) + uc.tokens.Count(userPrompt) + uc.tokens.Count(raw)

	rewritten, err := parseRewrittenQuery(raw)
	if err != nil {
		return domain.RewrittenQuery{}, used, domain.WrapError(domain.ErrMalformedModelOutput, "reword", err)
	}
	if !rewritten.Classification.Known() {
		return rewritten, used, domain.WrapError(domain.ErrDataQuality, "reword",
			fmt.Errorf("classification %q is outside the known labels", rewritten.Classification))
	}
	return rewritten, used, nil
}

// parseRewrittenQuery expects a JSON object with exactly the keys
// classification and query. Models occasionally wrap the object in prose, so
// the outermost braces are located first.
func parseRewrittenQuery(raw string) (domain.RewrittenQuery, error) {
	var parsed struct {
		Classification string `json:"classification"`
		Query          string `json:"query"`
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(extractJSONObject(raw))))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&parsed); err != nil {
		return domain.RewrittenQuery{}, fmt.Errorf("parse reword json: %w", err)
	}
	if strings.TrimSpace(parsed.Query) == "" {
		return domain.RewrittenQuery{}, fmt.Errorf("reword response has no query")
	}
	if strings.TrimSpace(parsed.Classification) == "" {
		return domain.RewrittenQuery{}, fmt.Errorf("reword response has no classification")
	}

	return domain.RewrittenQuery{
		Classification: domain.Classification(strings.ToLower(strings.TrimSpace(parsed.Classification))),
		Query:          strings.TrimSpace(parsed.Query),
	}, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
