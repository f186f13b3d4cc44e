package client

import (
	"context"
	"time"
)

// Safety calls the safety service.
type Safety struct {
	base
}

// NewSafety creates a safety client.
func NewSafety(baseURL string, timeout time.Duration) *Safety {
	return &Safety{base: newBase(baseURL, timeout)}
}

// ValidateRequest is the payload for both validation endpoints.
type ValidateRequest struct {
	Text string `json:"text"`
}

// ValidateInputResponse is the POST /validate/input result.
type ValidateInputResponse struct {
	IsSafe       bool     `json:"is_safe"`
	Issues       []string `json:"issues,omitempty"`
	FilteredText string   `json:"filtered_text,omitempty"`
}

// ValidateInput checks user text before it enters the pipeline.
func (c *Safety) ValidateInput(ctx context.Context, text string) (ValidateInputResponse, error) {
	var resp ValidateInputResponse
	err := c.postJSON(ctx, "/validate/input", ValidateRequest{Text: text}, &resp)
	return resp, err
}

// ValidateOutputResponse is the POST /validate/output result.
type ValidateOutputResponse struct {
	IsSafe     bool     `json:"is_safe"`
	Confidence float64  `json:"confidence"`
	Issues     []string `json:"issues,omitempty"`
}

// ValidateOutput checks generated text before it reaches the user.
func (c *Safety) ValidateOutput(ctx context.Context, text string) (ValidateOutputResponse, error) {
	var resp ValidateOutputResponse
	err := c.postJSON(ctx, "/validate/output", ValidateRequest{Text: text}, &resp)
	return resp, err
}

// RateLimitRequest is the POST /rate-limit payload.
type RateLimitRequest struct {
	Identifier string `json:"identifier"`
}

// RateLimitResponse is the POST /rate-limit result.
type RateLimitResponse struct {
	Allowed        bool `json:"allowed"`
	Remaining      int  `json:"remaining"`
	ResetInSeconds int  `json:"reset_in_seconds"`
}

// CheckRateLimit consumes one slot from the identifier's window when
// allowed.
func (c *Safety) CheckRateLimit(ctx context.Context, identifier string) (RateLimitResponse, error) {
	var resp RateLimitResponse
	err := c.postJSON(ctx, "/rate-limit", RateLimitRequest{Identifier: identifier}, &resp)
	return resp, err
}

// Health probes the service health endpoint.
func (c *Safety) Health(ctx context.Context) error {
	return c.getHealth(ctx)
}
