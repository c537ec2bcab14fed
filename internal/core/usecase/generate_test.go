package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

func TestGenerateGroundsAnswerInPassages(t *testing.T) {
	llm := &completerFake{response: "Aloy was raised by Rost."}
	uc := NewGenerateUseCase(llm, wordCounter{})

	answer, used, err := uc.Generate(context.Background(), "Who raised Aloy?", []string{
		"Aloy is the protagonist.",
		"Rost raised Aloy as an outcast.",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "Aloy was raised by Rost." {
		t.Fatalf("answer = %q", answer)
	}
	if used <= 0 {
		t.Fatalf("expected token usage > 0, got %d", used)
	}
	if !strings.Contains(llm.lastUser, "Rost raised Aloy as an outcast.") {
		t.Fatalf("passage missing from grounding prompt: %s", llm.lastUser)
	}
	if !strings.Contains(llm.lastSystem, "Horizon game series") {
		t.Fatalf("unexpected system prompt: %s", llm.lastSystem)
	}
}

func TestGenerateEmptyPassagesAllowed(t *testing.T) {
	llm := &completerFake{response: "I do not have information on that."}
	uc := NewGenerateUseCase(llm, wordCounter{})

	answer, _, err := uc.Generate(context.Background(), "Who is Sylens?", nil)
	if err != nil {
		t.Fatalf("Generate() with no passages should not fail: %v", err)
	}
	if answer == "" {
		t.Fatalf("expected an answer")
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	uc := NewGenerateUseCase(&completerFake{err: errors.New("timeout")}, wordCounter{})
	_, _, err := uc.Generate(context.Background(), "q", []string{"p"})
	if !domain.IsKind(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
}
