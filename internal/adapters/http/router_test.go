package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/core/ports"
)

var errEmptyBody = errors.New("empty body")

type chatServiceFake struct {
	answer    *domain.Answer
	turnID    string
	askErr    error
	askCalls  int
	lastQuery string

	feedbackErr  error
	lastTurnID   string
	lastRating   int
	feedbackCnts int
}

func (f *chatServiceFake) Ask(_ context.Context, query string) (*domain.Answer, string, error) {
	f.askCalls++
	f.lastQuery = query
	if f.askErr != nil {
		return nil, "", f.askErr
	}
	return f.answer, f.turnID, nil
}

func (f *chatServiceFake) RecordFeedback(_ context.Context, turnID string, rating int) error {
	f.feedbackCnts++
	f.lastTurnID = turnID
	f.lastRating = rating
	return f.feedbackErr
}

func newTestRouter(service ports.ChatService) (*Router, map[string]int) {
	factoryCalls := make(map[string]int)
	registry := NewSessionRegistry(func(sessionID string) ports.ChatService {
		factoryCalls[sessionID]++
		return service
	})
	return NewRouter(registry, nil, "api"), factoryCalls
}

func TestAskReturnsAnswerAndTurnHandle(t *testing.T) {
	fake := &chatServiceFake{
		answer: &domain.Answer{
			Text: "GAIA is a terraforming AI.",
			Rewrite: domain.RewrittenQuery{
				Classification: domain.ClassMachine,
				Query:          "What is GAIA?",
			},
			Passages: []domain.RetrievedPassage{{ID: "p-1", Content: "GAIA governs the terraforming system."}},
		},
		turnID: "turn-42",
	}
	router, _ := newTestRouter(fake)
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/ask", "application/json",
		strings.NewReader(`{"session_id":"s-1","query":"what is gaia"}`))
	if err != nil {
		t.Fatalf("POST /v1/ask error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body askResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.TurnID != "turn-42" {
		t.Fatalf("turn_id = %q", body.TurnID)
	}
	if body.Classification != "machine" || body.RewrittenQuery != "What is GAIA?" {
		t.Fatalf("unexpected rewrite fields: %+v", body)
	}
	if len(body.Passages) != 1 || body.Passages[0] != "GAIA governs the terraforming system." {
		t.Fatalf("unexpected passages: %v", body.Passages)
	}
	if fake.lastQuery != "what is gaia" {
		t.Fatalf("query not forwarded: %q", fake.lastQuery)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("missing %s header", requestIDHeader)
	}
}

func TestAskRejectsEmptyQuery(t *testing.T) {
	fake := &chatServiceFake{}
	router, _ := newTestRouter(fake)
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/ask", "application/json", strings.NewReader(`{"query":"  "}`))
	if err != nil {
		t.Fatalf("POST /v1/ask error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if fake.askCalls != 0 {
		t.Fatalf("service must not be called for an empty query")
	}
}

func TestAskMapsTaxonomyToStatusWithoutLeakingDetails(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"upstream", domain.WrapError(domain.ErrUpstreamUnavailable, "generation", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"malformed", domain.WrapError(domain.ErrMalformedModelOutput, "reword", errEmptyBody), http.StatusBadGateway},
		{"data quality", domain.WrapError(domain.ErrDataQuality, "reword", errEmptyBody), http.StatusUnprocessableEntity},
		{"invalid", domain.WrapError(domain.ErrInvalidArgument, "ask", errEmptyBody), http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newTestRouter(&chatServiceFake{askErr: tc.err})
			server := httptest.NewServer(router.Handler())
			defer server.Close()

			resp, err := http.Post(server.URL+"/v1/ask", "application/json", strings.NewReader(`{"query":"q"}`))
			if err != nil {
				t.Fatalf("POST /v1/ask error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if strings.Contains(body["error"], "reword") || strings.Contains(body["error"], "generation") {
				t.Fatalf("error body leaks stage internals: %q", body["error"])
			}
		})
	}
}

func TestFeedbackForwardsRatingAndHandle(t *testing.T) {
	fake := &chatServiceFake{}
	router, _ := newTestRouter(fake)
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/feedback", "application/json",
		strings.NewReader(`{"session_id":"s-1","turn_id":"turn-42","rating":1}`))
	if err != nil {
		t.Fatalf("POST /v1/feedback error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if fake.lastTurnID != "turn-42" || fake.lastRating != 1 {
		t.Fatalf("feedback not forwarded: turn=%q rating=%d", fake.lastTurnID, fake.lastRating)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(&chatServiceFake{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/ask")
	if err != nil {
		t.Fatalf("GET /v1/ask error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestSessionRegistryReusesInstancePerSession(t *testing.T) {
	fake := &chatServiceFake{answer: &domain.Answer{}, turnID: "t"}
	router, factoryCalls := newTestRouter(fake)
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Post(server.URL+"/v1/ask", "application/json",
			strings.NewReader(`{"session_id":"s-1","query":"q"}`))
		if err != nil {
			t.Fatalf("POST /v1/ask error = %v", err)
		}
		resp.Body.Close()
	}
	resp, err := http.Post(server.URL+"/v1/ask", "application/json",
		strings.NewReader(`{"query":"q"}`))
	if err != nil {
		t.Fatalf("POST /v1/ask error = %v", err)
	}
	resp.Body.Close()

	if factoryCalls["s-1"] != 1 {
		t.Fatalf("expected one instance for session s-1, factory called %d times", factoryCalls["s-1"])
	}
	if factoryCalls["default"] != 1 {
		t.Fatalf("missing session id must map to the default session: %v", factoryCalls)
	}
}
