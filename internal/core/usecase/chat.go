package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

// TurnObserver receives the telemetry record of every completed turn, in
// addition to the durable sink. Used for metrics.
type TurnObserver interface {
	ObserveTurn(record domain.TelemetryRecord)
}

// turnState tracks the per-turn pipeline progression. No state is skipped; a
// failure in any state abandons the turn without a telemetry row.
type turnState int

const (
	stateIdle turnState = iota
	stateRewriting
	stateRetrieving
	stateGenerating
	stateCompleted
	stateFailed
)

// ChatUseCase sequences reword, retrieval and generation for one conversation
// session. It owns the session history exclusively; concurrent sessions each
// get their own instance. The telemetry sink is the only shared resource and
// serializes its own writes.
type ChatUseCase struct {
	rewriter  ports.QueryRewriter
	retriever ports.PassageRetriever
	generator ports.ResponseGenerator
	budget    *HistoryBudget
	telemetry ports.TelemetrySink
	observer  TurnObserver
	topK      int

	mu         sync.Mutex
	state      turnState
	history    []domain.ConversationTurn
	lastTurnID string
}

func NewChatUseCase(
	rewriter ports.QueryRewriter,
	retriever ports.PassageRetriever,
	generator ports.ResponseGenerator,
	budget *HistoryBudget,
	telemetry ports.TelemetrySink,
	topK int,
) *ChatUseCase {
	if topK <= 0 {
		topK = 3
	}
	return &ChatUseCase{
		rewriter:  rewriter,
		retriever: retriever,
		generator: generator,
		budget:    budget,
		telemetry: telemetry,
		topK:      topK,
		state:     stateIdle,
	}
}

// WithObserver attaches a turn observer. Call before serving traffic.
func (uc *ChatUseCase) WithObserver(observer TurnObserver) *ChatUseCase {
	uc.observer = observer
	return uc
}

// Ask runs one full query turn and returns the answer together with the turn
// handle a later feedback call must reference.
func (uc *ChatUseCase) Ask(ctx context.Context, query string) (*domain.Answer, string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, "", domain.WrapError(domain.ErrInvalidArgument, "ask", fmt.Errorf("query is empty"))
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	start := time.Now()

	uc.state = stateRewriting
	usable := uc.budget.Usable(uc.history)
	rewritten, rewordTokens, err := uc.rewriter.Reword(ctx, query, usable)
	if err != nil {
		uc.state = stateFailed
		return nil, "", err
	}
	afterReword := time.Now()

	uc.state = stateRetrieving
	passages, err := uc.retriever.Retrieve(ctx, rewritten.Query, rewritten.Classification, uc.topK)
	if err != nil {
		uc.state = stateFailed
		return nil, "", err
	}
	afterRetrieve := time.Now()

	uc.state = stateGenerating
	contents := make([]string, 0, len(passages))
	for _, passage := range passages {
		contents = append(contents, passage.Content)
	}
	answerText, generationTokens, err := uc.generator.Generate(ctx, rewritten.Query, contents)
	if err != nil {
		uc.state = stateFailed
		return nil, "", err
	}
	afterGenerate := time.Now()

	uc.state = stateCompleted
	uc.history = append(uc.history,
		domain.ConversationTurn{Role: domain.RoleUser, Text: query},
		domain.ConversationTurn{Role: domain.RoleAssistant, Text: answerText},
	)

	turnID := uuid.NewString()
	record := domain.TelemetryRecord{
		Timestamp:      start.UTC(),
		UsedTokens:     rewordTokens + generationTokens,
		RewordTime:     afterReword.Sub(start),
		RAGTime:        afterRetrieve.Sub(afterReword),
		GenerationTime: afterGenerate.Sub(afterRetrieve),
		FullTime:       afterGenerate.Sub(start),
		Classification: rewritten.Classification,
		QueryCount:     1,
		Rating:         domain.RatingUnset,
	}

	if err := uc.telemetry.Append(ctx, turnID, record); err != nil {
		// The answer is already produced; losing one usage row must not fail
		// the turn.
		slog.Error("telemetry_append_failed", "turn_id", turnID, "error", err)
	} else {
		uc.lastTurnID = turnID
	}

	if uc.observer != nil {
		uc.observer.ObserveTurn(record)
	}

	return &domain.Answer{
		Text:     answerText,
		Rewrite:  rewritten,
		Passages: passages,
	}, turnID, nil
}

// RecordFeedback amends the rating of the referenced turn. Only the most
// recently completed turn is still open; a stale or unknown handle is a
// no-op, because the UI may fire feedback speculatively. Last write wins when
// called twice for the same turn.
func (uc *ChatUseCase) RecordFeedback(ctx context.Context, turnID string, rating int) error {
	switch rating {
	case domain.RatingInvalid, domain.RatingNegative, domain.RatingPositive:
	default:
		return domain.WrapError(domain.ErrInvalidArgument, "feedback", fmt.Errorf("rating %d is not one of -1, 0, 1", rating))
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.lastTurnID == "" {
		return nil
	}
	if turnID != uc.lastTurnID {
		slog.Warn("feedback_for_closed_turn", "turn_id", turnID)
		return nil
	}

	return uc.telemetry.AmendRating(ctx, turnID, rating)
}
