package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gaiachat/horizon-rag/internal/observability/metrics"
)

type Router struct {
	sessions *SessionRegistry
	metrics  *metrics.HTTPServerMetrics
	service  string
}

func NewRouter(sessions *SessionRegistry, serverMetrics *metrics.HTTPServerMetrics, service string) *Router {
	return &Router{
		sessions: sessions,
		metrics:  serverMetrics,
		service:  service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.ask)
	mux.HandleFunc("/v1/feedback", rt.feedback)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type askResponse struct {
	TurnID         string   `json:"turn_id"`
	Answer         string   `json:"answer"`
	Classification string   `json:"classification"`
	RewrittenQuery string   `json:"rewritten_query"`
	Passages       []string `json:"passages"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	service := rt.sessions.Get(sessionID(req.SessionID))
	answer, turnID, err := service.Ask(r.Context(), req.Query)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		slog.Error("ask_failed",
			"request_id", requestIDFromContext(r.Context()),
			"status", status,
			"error", err,
		)
		writeJSON(w, status, map[string]string{"error": errorMessage(status)})
		return
	}

	passages := make([]string, 0, len(answer.Passages))
	for _, passage := range answer.Passages {
		passages = append(passages, passage.Content)
	}
	writeJSON(w, http.StatusOK, askResponse{
		TurnID:         turnID,
		Answer:         answer.Text,
		Classification: string(answer.Rewrite.Classification),
		RewrittenQuery: answer.Rewrite.Query,
		Passages:       passages,
	})
}

type feedbackRequest struct {
	SessionID string `json:"session_id"`
	TurnID    string `json:"turn_id"`
	Rating    int    `json:"rating"`
}

func (rt *Router) feedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	service := rt.sessions.Get(sessionID(req.SessionID))
	if err := service.RecordFeedback(r.Context(), req.TurnID, req.Rating); err != nil {
		status := mapErrorToHTTPStatus(err)
		slog.Warn("feedback_failed",
			"request_id", requestIDFromContext(r.Context()),
			"status", status,
			"error", err,
		)
		writeJSON(w, status, map[string]string{"error": errorMessage(status)})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRating(rt.service, req.Rating)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func sessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "default"
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
