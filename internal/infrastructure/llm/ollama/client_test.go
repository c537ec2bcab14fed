package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJudgeSendsChatMessages(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"Q1?\n\nQ2?\n\nQ3?"}}`))
	}))
	defer server.Close()

	judge := NewJudge(New(server.URL, "gemma3", "nomic-embed-text", nil))
	response, err := judge.Complete(context.Background(), "", "generate 3 possible questions")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(response, "Q2?") {
		t.Fatalf("unexpected response: %s", response)
	}

	messages, _ := captured["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("empty system prompt must not produce a system message: %v", messages)
	}
}

func TestEmbedReturnsVectorsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gemma3", "nomic-embed-text", nil))
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gemma3", "nomic-embed-text", nil))
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestClassifyOllamaErrorRetryableStatus(t *testing.T) {
	err := &HTTPStatusError{Operation: "embed", StatusCode: http.StatusTooManyRequests, Status: "429"}
	class := classifyOllamaError(err)
	if !class.Retryable || !class.RecordFailure {
		t.Fatalf("429 should be retryable and recorded, got %+v", class)
	}

	badRequest := &HTTPStatusError{Operation: "embed", StatusCode: http.StatusBadRequest, Status: "400"}
	class = classifyOllamaError(badRequest)
	if class.Retryable {
		t.Fatalf("400 must not be retried, got %+v", class)
	}
}
