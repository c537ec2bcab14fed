package usecase

import (
	"reflect"
	"testing"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

// charCounter counts one token per character, which makes budgets easy to
// reason about in tests.
type charCounter struct{}

func (charCounter) Count(text string) int { return len(text) }

func TestHistoryBudgetFullHistoryUnderBudget(t *testing.T) {
	budget := NewHistoryBudget(charCounter{}, 500)
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Text: "What machines roam the plains?"},
		{Role: domain.RoleAssistant, Text: "Striders and Watchers are common."},
		{Role: domain.RoleUser, Text: "Are they dangerous?"},
	}

	got := budget.Usable(history)
	want := []string{
		"What machines roam the plains?",
		"Striders and Watchers are common.",
		"Are they dangerous?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Usable() = %v, want full history in order", got)
	}
}

func TestHistoryBudgetStopsBeforeLimit(t *testing.T) {
	budget := NewHistoryBudget(charCounter{}, 10)
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Text: "aaaa"},      // running total 4
		{Role: domain.RoleAssistant, Text: "bbbb"}, // running total 8
		{Role: domain.RoleUser, Text: "cc"},        // would reach 10, excluded
		{Role: domain.RoleAssistant, Text: "d"},
	}

	got := budget.Usable(history)
	if len(got) != 2 {
		t.Fatalf("Usable() returned %d messages, want 2: %v", len(got), got)
	}
	if got[0] != "aaaa" || got[1] != "bbbb" {
		t.Fatalf("Usable() lost chronological order: %v", got)
	}
}

func TestHistoryBudgetEmptyHistory(t *testing.T) {
	budget := NewHistoryBudget(charCounter{}, 100)
	if got := budget.Usable(nil); len(got) != 0 {
		t.Fatalf("Usable(nil) = %v, want empty", got)
	}
}

func TestHistoryBudgetOversizedFirstMessage(t *testing.T) {
	budget := NewHistoryBudget(charCounter{}, 5)
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Text: "this message alone exceeds the budget"},
	}
	if got := budget.Usable(history); len(got) != 0 {
		t.Fatalf("Usable() = %v, want empty for oversized message", got)
	}
}
