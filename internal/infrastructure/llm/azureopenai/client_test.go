package azureopenai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return &Client{api: openai.NewClientWithConfig(cfg), model: "o4-mini"}, server
}

func TestCompleteSendsSystemAndUserMessages(t *testing.T) {
	var captured openai.ChatCompletionRequest
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		response := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "  grounded answer  "}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	})
	defer server.Close()

	answer, err := client.Complete(context.Background(), "persona", "question")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "grounded answer" {
		t.Fatalf("answer = %q, want trimmed content", answer)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "persona" {
		t.Fatalf("unexpected system message: %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "question" {
		t.Fatalf("unexpected user message: %+v", captured.Messages[1])
	}
}

func TestCompleteNoChoices(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	defer server.Close()

	_, err := client.Complete(context.Background(), "s", "u")
	if err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestClassifyOpenAIErrorRetryableStatus(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}
	if class := classifyOpenAIError(apiErr); !class.Retryable {
		t.Fatalf("503 should be retryable, got %+v", class)
	}

	badKey := &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}
	if class := classifyOpenAIError(badKey); class.Retryable {
		t.Fatalf("401 must not be retried, got %+v", class)
	}
}
