package usecase

import (
	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

// HistoryBudget selects the prefix of a conversation that fits a token limit.
type HistoryBudget struct {
	counter ports.TokenCounter
	limit   int
}

func NewHistoryBudget(counter ports.TokenCounter, tokenLimit int) *HistoryBudget {
	if tokenLimit <= 0 {
		tokenLimit = 500
	}
	return &HistoryBudget{counter: counter, limit: tokenLimit}
}

// Usable walks the history oldest-first and stops before the message that
// would push the running token count to meet or exceed the limit. The
// returned subset keeps chronological order. A single oversized message is
// excluded, never truncated.
func (b *HistoryBudget) Usable(history []domain.ConversationTurn) []string {
	usable := make([]string, 0, len(history))
	used := 0
	for _, turn := range history {
		cost := b.counter.Count(turn.Text)
		if used+cost >= b.limit {
			break
		}
		used += cost
		usable = append(usable, turn.Text)
	}
	return usable
}
