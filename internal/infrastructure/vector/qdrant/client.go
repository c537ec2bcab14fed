package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/resilience"
)

const (
	denseVectorName  = "nomic"
	sparseVectorName = "bm25"

	payloadKeyContent        = "content"
	payloadKeyClassification = "classification"
)

// Client talks to a Qdrant collection that carries two named vectors per
// point: a dense embedding ("nomic") and a sparse lexical one ("bm25").
// Both search branches filter on the classification payload field.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, collection string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

func (c *Client) SearchDense(ctx context.Context, queryVector []float32, classification domain.Classification, limit int) ([]domain.RetrievedPassage, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("qdrant dense search: empty query vector")
	}
	reqBody := map[string]any{
		"vector": map[string]any{
			"name":   denseVectorName,
			"vector": queryVector,
		},
		"limit":        limit,
		"with_payload": true,
	}
	if filter := classificationFilter(classification); filter != nil {
		reqBody["filter"] = filter
	}
	return c.search(ctx, "search_dense", reqBody)
}

func (c *Client) SearchLexical(ctx context.Context, queryText string, classification domain.Classification, limit int) ([]domain.RetrievedPassage, error) {
	sparse := encodeSparseQuery(queryText)
	if len(sparse.Indices) == 0 {
		return nil, nil
	}
	reqBody := map[string]any{
		"vector": map[string]any{
			"name":   sparseVectorName,
			"vector": sparse,
		},
		"limit":        limit,
		"with_payload": true,
	}
	if filter := classificationFilter(classification); filter != nil {
		reqBody["filter"] = filter
	}
	return c.search(ctx, "search_lexical", reqBody)
}

func classificationFilter(classification domain.Classification) map[string]any {
	if classification == "" {
		return nil
	}
	return map[string]any{
		"must": []map[string]any{
			{
				"key": payloadKeyClassification,
				"match": map[string]any{
					"value": string(classification),
				},
			},
		},
	}
}

func (c *Client) search(ctx context.Context, operation string, reqBody map[string]any) ([]domain.RetrievedPassage, error) {
	var searchResp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	call := func(callCtx context.Context) error {
		searchResp.Result = nil
		return c.postJSON(callCtx, operation, "/points/search", reqBody, &searchResp)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "qdrant."+operation, call, classifyQdrantError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.RetrievedPassage, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievedPassage{
			ID:       pointID(r.ID),
			Content:  getStringPayload(r.Payload, payloadKeyContent),
			Score:    r.Score,
			Metadata: payloadMetadata(r.Payload),
		})
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, operation, path string, reqBody, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	url := fmt.Sprintf("%s/collections/%s%s", c.baseURL, c.collection, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// pointID renders the point identifier the way Qdrant stores it: either a
// UUID string or an unsigned integer.
func pointID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func payloadMetadata(payload map[string]any) map[string]string {
	if len(payload) == 0 {
		return nil
	}
	meta := make(map[string]string, len(payload))
	for key, value := range payload {
		if key == payloadKeyContent {
			continue
		}
		if s, ok := value.(string); ok {
			meta[key] = s
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
