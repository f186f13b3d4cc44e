package client

import (
	"context"
	"time"
)

// Perception calls the perception service.
type Perception struct {
	base
}

// NewPerception creates a perception client.
func NewPerception(baseURL string, timeout time.Duration) *Perception {
	return &Perception{base: newBase(baseURL, timeout)}
}

// EmbedRequest is the POST /embed payload.
type EmbedRequest struct {
	Text string `json:"text"`
}

// EmbedResponse is the POST /embed result.
type EmbedResponse struct {
	Embedding    []float32 `json:"embedding"`
	Dimensions   int       `json:"dimensions"`
	PromptTokens int       `json:"prompt_tokens"`
	TotalTokens  int       `json:"total_tokens"`
}

// Embed vectorizes one text.
func (c *Perception) Embed(ctx context.Context, text string) (EmbedResponse, error) {
	var resp EmbedResponse
	err := c.postJSON(ctx, "/embed", EmbedRequest{Text: text}, &resp)
	return resp, err
}

// EmbedBatchRequest is the POST /embed/batch payload.
type EmbedBatchRequest struct {
	Texts []string `json:"texts"`
}

// EmbedBatchResponse is the POST /embed/batch result.
type EmbedBatchResponse struct {
	Embeddings  [][]float32 `json:"embeddings"`
	Count       int         `json:"count"`
	TotalTokens int         `json:"total_tokens"`
}

// EmbedBatch vectorizes many texts.
func (c *Perception) EmbedBatch(ctx context.Context, texts []string) (EmbedBatchResponse, error) {
	var resp EmbedBatchResponse
	err := c.postJSON(ctx, "/embed/batch", EmbedBatchRequest{Texts: texts}, &resp)
	return resp, err
}

// ClassifyRequest is the POST /classify payload.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse is the POST /classify result. AllIntents and AllScores
// are parallel slices sorted by descending score.
type ClassifyResponse struct {
	Intent     string    `json:"intent"`
	Confidence float64   `json:"confidence"`
	AllIntents []string  `json:"all_intents"`
	AllScores  []float64 `json:"all_scores"`
}

// Classify detects the query intent.
func (c *Perception) Classify(ctx context.Context, text string) (ClassifyResponse, error) {
	var resp ClassifyResponse
	err := c.postJSON(ctx, "/classify", ClassifyRequest{Text: text}, &resp)
	return resp, err
}

// Health probes the service health endpoint.
func (c *Perception) Health(ctx context.Context) error {
	return c.getHealth(ctx)
}
