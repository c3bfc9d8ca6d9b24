package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/model"
	adapterport "asklaw-backend/internal/domain/ports/adapter"
	"asklaw-backend/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapterport.Retriever = (*QdrantRetriever)(nil)

// QdrantRetriever performs similarity search against Qdrant's REST API
// (POST /collections/{name}/points/search). The question is embedded through
// the injected Embedder; passages come back ordered by descending score.
// An empty index yields an empty slice, not an error.
type QdrantRetriever struct {
	base       string
	collection string
	embedder   adapterport.Embedder
	client     *http.Client
}

func NewQdrantRetriever(baseURL, collection string, embedder adapterport.Embedder, timeout time.Duration) (*QdrantRetriever, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("qdrant base url empty")
	}
	if collection == "" {
		collection = "legal_docs"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &QdrantRetriever{
		base:       strings.TrimRight(baseURL, "/"),
		collection: collection,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

type searchHit struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func (q *QdrantRetriever) Retrieve(ctx context.Context, question string, topK int) ([]model.Passage, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be >= 1", domain.ErrInvalidArgument)
	}

	vector, err := q.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}

	reqBody := struct {
		Vector      []float32 `json:"vector"`
		Limit       int       `json:"limit"`
		WithPayload bool      `json:"with_payload"`
	}{Vector: vector, Limit: topK, WithPayload: true}

	b, _ := json.Marshal(reqBody)
	url := fmt.Sprintf("%s/collections/%s/points/search", q.base, q.collection)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := q.client.Do(req)
	if err != nil {
		metrics.ObserveRetrieval(0, int(time.Since(start)/time.Millisecond), false)
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		metrics.ObserveRetrieval(0, int(time.Since(start)/time.Millisecond), false)
		return nil, fmt.Errorf("%w: qdrant http %d", domain.ErrRetrievalUnavailable, resp.StatusCode)
	}

	var payload struct {
		Result []searchHit `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.ObserveRetrieval(0, int(time.Since(start)/time.Millisecond), false)
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}

	passages := make([]model.Passage, 0, len(payload.Result))
	for _, hit := range payload.Result {
		text, _ := hit.Payload["text"].(string)
		meta := make(map[string]any, len(hit.Payload)+1)
		for k, v := range hit.Payload {
			if k == "text" {
				continue
			}
			meta[k] = v
		}
		meta["_score"] = hit.Score
		passages = append(passages, model.Passage{Text: text, Score: hit.Score, Metadata: meta})
	}
	metrics.ObserveRetrieval(len(passages), int(time.Since(start)/time.Millisecond), true)
	return passages, nil
}
