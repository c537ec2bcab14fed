package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

// EvalUseCase replays a labeled dataset through reword, retrieval and
// generation, bypassing history and telemetry, and scores every entry.
// Entries are processed sequentially to keep the external-service load
// predictable; the limiter paces the runs.
type EvalUseCase struct {
	rewriter  ports.QueryRewriter
	retriever ports.PassageRetriever
	generator ports.ResponseGenerator
	embedder  ports.Embedder
	judge     ports.ChatCompleter
	limiter   *rate.Limiter
	topK      int
}

func NewEvalUseCase(
	rewriter ports.QueryRewriter,
	retriever ports.PassageRetriever,
	generator ports.ResponseGenerator,
	embedder ports.Embedder,
	judge ports.ChatCompleter,
	limiter *rate.Limiter,
	topK int,
) *EvalUseCase {
	if topK <= 0 {
		topK = 3
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &EvalUseCase{
		rewriter:  rewriter,
		retriever: retriever,
		generator: generator,
		embedder:  embedder,
		judge:     judge,
		limiter:   limiter,
		topK:      topK,
	}
}

// Evaluate scores every entry, downgrading per-entry failures to flagged
// results so one flaky upstream call cannot kill the batch. The final MRR
// divides by the number of successfully scored entries; when none scored it
// is 0 and the report carries the distinct no-entries-scored condition.
func (uc *EvalUseCase) Evaluate(ctx context.Context, entries []domain.EvaluationEntry) (*domain.EvaluationReport, error) {
	if len(entries) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidArgument, "evaluate", fmt.Errorf("dataset is empty"))
	}

	report := &domain.EvaluationReport{
		Results: make([]domain.EvaluationResult, 0, len(entries)),
	}
	rrSum := 0.0

	for i, entry := range entries {
		if err := uc.limiter.Wait(ctx); err != nil {
			return nil, domain.WrapError(domain.ErrUpstreamUnavailable, "evaluate", err)
		}

		result, err := uc.scoreEntry(ctx, entry)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("evaluation_entry_failed", "entry", i, "question", entry.Question, "error", err)
			report.Results = append(report.Results, domain.EvaluationResult{
				Entry:       entry,
				Failed:      true,
				FailureNote: err.Error(),
			})
			continue
		}

		rrSum += result.ReciprocalRank
		report.Scored++
		report.Results = append(report.Results, *result)
	}

	if report.Scored == 0 {
		report.MRR = 0
		report.NoEntriesScored = true
		return report, nil
	}
	report.MRR = rrSum / float64(report.Scored)
	return report, nil
}

func (uc *EvalUseCase) scoreEntry(ctx context.Context, entry domain.EvaluationEntry) (*domain.EvaluationResult, error) {
	rewritten, _, err := uc.rewriter.Reword(ctx, entry.Question, nil)
	if err != nil {
		return nil, err
	}

	passages, err := uc.retriever.Retrieve(ctx, rewritten.Query, rewritten.Classification, uc.topK)
	if err != nil {
		return nil, err
	}

	retrievedIDs := make([]string, 0, len(passages))
	contents := make([]string, 0, len(passages))
	for _, passage := range passages {
		retrievedIDs = append(retrievedIDs, passage.ID)
		contents = append(contents, passage.Content)
	}

	relevantSet := make(map[string]struct{}, len(entry.Relevant))
	for _, id := range entry.Relevant {
		relevantSet[id] = struct{}{}
	}

	answer, _, err := uc.generator.Generate(ctx, rewritten.Query, contents)
	if err != nil {
		return nil, err
	}

	precision := precisionAtK(retrievedIDs, relevantSet, uc.topK)
	recall := recallAtK(retrievedIDs, entry.Relevant, uc.topK)

	cosine, err := uc.answerSimilarity(ctx, answer, entry.Answer)
	if err != nil {
		return nil, err
	}
	relevancy, err := uc.answerRelevancy(ctx, entry.Question, answer)
	if err != nil {
		return nil, err
	}

	return &domain.EvaluationResult{
		Entry:           entry,
		Precision:       precision,
		Recall:          recall,
		F1Score:         f1AtK(precision, recall),
		CosineSim:       cosine,
		AnswerRelevancy: relevancy,
		ReciprocalRank:  reciprocalRank(retrievedIDs, relevantSet, uc.topK),
		GeneratedAnswer: answer,
	}, nil
}

func (uc *EvalUseCase) answerSimilarity(ctx context.Context, generated, groundTruth string) (float64, error) {
	vectors, err := uc.embedder.Embed(ctx, []string{generated, groundTruth})
	if err != nil {
		return 0, domain.WrapError(domain.ErrUpstreamUnavailable, "evaluate", fmt.Errorf("embed answers: %w", err))
	}
	if len(vectors) != 2 {
		return 0, domain.WrapError(domain.ErrUpstreamUnavailable, "evaluate", fmt.Errorf("expected 2 embeddings, got %d", len(vectors)))
	}
	return cosineSimilarity(vectors[0], vectors[1]), nil
}

// answerRelevancy asks the judge model which questions the generated answer
// could be answering, and averages their embedding similarity against the
// original question. A proxy for whether the answer addresses the question.
func (uc *EvalUseCase) answerRelevancy(ctx context.Context, question, answer string) (float64, error) {
	raw, err := uc.judge.Complete(ctx, "", buildRelevancyJudgePrompt(answer))
	if err != nil {
		return 0, domain.WrapError(domain.ErrUpstreamUnavailable, "evaluate", fmt.Errorf("judge questions: %w", err))
	}

	candidates := make([]string, 0, 3)
	for _, block := range strings.Split(raw, "\n\n") {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	if len(candidates) == 0 {
		return 0, domain.WrapError(domain.ErrMalformedModelOutput, "evaluate", fmt.Errorf("judge returned no questions"))
	}

	texts := append([]string{question}, candidates...)
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, domain.WrapError(domain.ErrUpstreamUnavailable, "evaluate", fmt.Errorf("embed questions: %w", err))
	}
	if len(vectors) != len(texts) {
		return 0, domain.WrapError(domain.ErrUpstreamUnavailable, "evaluate", fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors)))
	}

	score := 0.0
	for _, vector := range vectors[1:] {
		score += cosineSimilarity(vectors[0], vector)
	}
	return score / float64(len(candidates)), nil
}
