package client

import (
	"context"
	"time"
)

// Reasoning calls the reasoning service.
type Reasoning struct {
	base
}

// NewReasoning creates a reasoning client.
func NewReasoning(baseURL string, timeout time.Duration) *Reasoning {
	return &Reasoning{base: newBase(baseURL, timeout)}
}

// GenerateRequest is the POST /generate payload. Context carries the ranked
// documents the answer should be grounded in.
type GenerateRequest struct {
	Query   string             `json:"query"`
	Intent  string             `json:"intent,omitempty"`
	Context []SearchResultItem `json:"context,omitempty"`
}

// GenerateResponse is the POST /generate result.
type GenerateResponse struct {
	Response   string  `json:"response"`
	Confidence float64 `json:"confidence"`
	TokensUsed int     `json:"tokens_used"`
}

// Generate produces an answer for the query.
func (c *Reasoning) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	var resp GenerateResponse
	err := c.postJSON(ctx, "/generate", req, &resp)
	return resp, err
}

// AnalyzeRequest is the POST /analyze payload.
type AnalyzeRequest struct {
	Query string `json:"query"`
}

// AnalyzeResponse is the POST /analyze result.
type AnalyzeResponse struct {
	Complexity            string `json:"complexity"`
	RequiresContext       bool   `json:"requires_context"`
	WordCount             int    `json:"word_count"`
	SuggestedStrategy     string `json:"suggested_strategy"`
	EstimatedResponseType string `json:"estimated_response_type"`
}

// Analyze runs the rule-based query analysis.
func (c *Reasoning) Analyze(ctx context.Context, query string) (AnalyzeResponse, error) {
	var resp AnalyzeResponse
	err := c.postJSON(ctx, "/analyze", AnalyzeRequest{Query: query}, &resp)
	return resp, err
}

// Health probes the service health endpoint.
func (c *Reasoning) Health(ctx context.Context) error {
	return c.getHealth(ctx)
}
