package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spec-kit/support-console/internal/config"
)

// Client answers user questions against the knowledge base.
type Client interface {
	Answer(ctx context.Context, query Query) (*Answer, error)
}

// Query is the question plus retrieval parameters.
type Query struct {
	Question      string  `json:"question"`
	UserID        string  `json:"user_id,omitempty"`
	ChatID        string  `json:"chat_id,omitempty"`
	Language      string  `json:"language,omitempty"`
	Temperature   float64 `json:"temperature"`
	MaxTokens     int     `json:"max_tokens"`
	TopK          int     `json:"top_k"`
	MinSimilarity float64 `json:"min_similarity"`
}

// Source is a knowledge-base fragment the answer was grounded on.
type Source struct {
	Title      string  `json:"title"`
	URL        string  `json:"url,omitempty"`
	Similarity float64 `json:"similarity"`
}

// Answer is the generated reply with a confidence estimate in [0,1].
type Answer struct {
	Text       string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []Source `json:"sources"`
}

// HTTPClient calls the answer backend over HTTP.
type HTTPClient struct {
	baseURL string
	cfg     config.RAGConfig
	http    *http.Client
}

// NewHTTPClient builds a client with the configured deadline.
func NewHTTPClient(cfg config.RAGConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// Answer posts the query to /v1/answer and decodes the result.
func (c *HTTPClient) Answer(ctx context.Context, query Query) (*Answer, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("rag backend not configured")
	}
	if query.Temperature == 0 {
		query.Temperature = c.cfg.Temperature
	}
	if query.MaxTokens == 0 {
		query.MaxTokens = c.cfg.MaxTokens
	}
	if query.TopK == 0 {
		query.TopK = c.cfg.TopK
	}
	if query.MinSimilarity == 0 {
		query.MinSimilarity = c.cfg.MinSimilarity
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode rag query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/answer", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rag request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rag request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rag backend returned %d: %s", resp.StatusCode, string(data))
	}

	var answer Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode rag response: %w", err)
	}
	return &answer, nil
}
