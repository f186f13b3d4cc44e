package client

import (
	"context"
	"time"
)

// Memory calls the memory service.
type Memory struct {
	base
}

// NewMemory creates a memory client.
func NewMemory(baseURL string, timeout time.Duration) *Memory {
	return &Memory{base: newBase(baseURL, timeout)}
}

// SearchResultItem is one scored document in a search response.
type SearchResultItem struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
	Domain   string            `json:"domain,omitempty"`
}

// SearchRequest is the POST /search payload for a single domain.
type SearchRequest struct {
	Domain    string            `json:"domain"`
	Embedding []float32         `json:"embedding"`
	TopK      int               `json:"top_k,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// SearchResponse is the POST /search result.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
	Count   int                `json:"count"`
}

// Search runs a KNN query against one domain.
func (c *Memory) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	var resp SearchResponse
	err := c.postJSON(ctx, "/search", req, &resp)
	return resp, err
}

// MultiSearchRequest is the POST /search/multi payload. Domains defaults to
// all three when empty.
type MultiSearchRequest struct {
	Embedding     []float32 `json:"embedding"`
	TopKPerDomain int       `json:"top_k_per_domain,omitempty"`
	Domains       []string  `json:"domains,omitempty"`
}

// MultiSearchResponse groups per-domain results. Partial is set when at
// least one domain backend failed and came back empty.
type MultiSearchResponse struct {
	Assistant  []SearchResultItem `json:"assistant_results"`
	Portfolio  []SearchResultItem `json:"portfolio_results"`
	Knowledge  []SearchResultItem `json:"knowledge_results"`
	Partial    bool               `json:"partial"`
	TotalCount int                `json:"total_count"`
}

// MultiSearch queries up to three domains in one call.
func (c *Memory) MultiSearch(ctx context.Context, req MultiSearchRequest) (MultiSearchResponse, error) {
	var resp MultiSearchResponse
	err := c.postJSON(ctx, "/search/multi", req, &resp)
	return resp, err
}

// StoreRequest is the POST /store payload.
type StoreRequest struct {
	SessionID   string            `json:"session_id"`
	UserMessage string            `json:"user_message"`
	BotResponse string            `json:"bot_response"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// StoreResponse is the POST /store result.
type StoreResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// Store appends one conversation exchange.
func (c *Memory) Store(ctx context.Context, req StoreRequest) (StoreResponse, error) {
	var resp StoreResponse
	err := c.postJSON(ctx, "/store", req, &resp)
	return resp, err
}

// HistoryRequest is the POST /history payload.
type HistoryRequest struct {
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit,omitempty"`
}

// HistoryTurn is one stored exchange, oldest first.
type HistoryTurn struct {
	MessageID   string            `json:"message_id"`
	SessionID   string            `json:"session_id"`
	UserMessage string            `json:"user_message"`
	BotResponse string            `json:"bot_response"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HistoryResponse is the POST /history result.
type HistoryResponse struct {
	History []HistoryTurn `json:"history"`
	Count   int           `json:"count"`
}

// History fetches recent turns in chronological order.
func (c *Memory) History(ctx context.Context, sessionID string, limit int) (HistoryResponse, error) {
	var resp HistoryResponse
	err := c.postJSON(ctx, "/history", HistoryRequest{SessionID: sessionID, Limit: limit}, &resp)
	return resp, err
}

// IngestDocument is one item in the POST /documents payload.
type IngestDocument struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"embedding"`
}

// IngestRequest is the POST /documents payload.
type IngestRequest struct {
	Domain    string           `json:"domain"`
	Documents []IngestDocument `json:"documents"`
}

// IngestResponse is the POST /documents result.
type IngestResponse struct {
	Ingested int `json:"ingested"`
}

// IngestDocuments batch-loads pre-embedded documents into one domain.
func (c *Memory) IngestDocuments(ctx context.Context, req IngestRequest) (IngestResponse, error) {
	var resp IngestResponse
	err := c.postJSON(ctx, "/documents", req, &resp)
	return resp, err
}

// Health probes the service health endpoint.
func (c *Memory) Health(ctx context.Context) error {
	return c.getHealth(ctx)
}
