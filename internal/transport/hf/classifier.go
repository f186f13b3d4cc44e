// Package hf is a thin client for the Hugging Face hosted inference API.
// Only the zero-shot classification task is used; there is no local model
// and no training anywhere in the system.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models"

// Classifier calls a hosted zero-shot classification model.
type Classifier struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// Config holds the hosted classifier settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates a zero-shot classifier client.
func New(cfg *Config) *Classifier {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Classifier{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify implements domain.Classifier. The response lists every candidate
// label sorted by descending score; the top label becomes the intent.
func (c *Classifier) Classify(ctx context.Context, text string, labels []string) (domain.Classification, error) {
	if len(labels) == 0 {
		return domain.Classification{}, fmt.Errorf("no candidate labels: %w", domain.ErrClassifierError)
	}

	payload, err := json.Marshal(classifyRequest{
		Inputs:     text,
		Parameters: classifyParameters{CandidateLabels: labels},
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal classify request: %w", err)
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Classification{}, fmt.Errorf("classify: %w", domain.ErrServiceTimeout)
		}
		return domain.Classification{}, fmt.Errorf("classify request: %w: %w", domain.ErrClassifierError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("read classify response: %w", domain.ErrClassifierError)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("classifier API error",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		sentinel := domain.ErrClassifierError
		if resp.StatusCode == http.StatusTooManyRequests {
			sentinel = domain.ErrRateLimited
		}
		return domain.Classification{}, fmt.Errorf(
			"classifier API status %d: %w", resp.StatusCode, sentinel)
	}

	var parsed classifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Classification{}, fmt.Errorf("parse classify response: %w", domain.ErrClassifierError)
	}
	if len(parsed.Labels) == 0 || len(parsed.Labels) != len(parsed.Scores) {
		return domain.Classification{}, fmt.Errorf(
			"malformed classify response (%d labels, %d scores): %w",
			len(parsed.Labels), len(parsed.Scores), domain.ErrClassifierError)
	}

	return domain.Classification{
		Intent:     parsed.Labels[0],
		Confidence: parsed.Scores[0],
		Labels:     parsed.Labels,
		Scores:     parsed.Scores,
	}, nil
}

// HealthCheck probes the model endpoint with a HEAD-like minimal request.
func (c *Classifier) HealthCheck(ctx context.Context) error {
	_, err := c.Classify(ctx, "ping", []string{"GREETING", "GENERAL_CONVERSATION"})
	if err != nil {
		return fmt.Errorf("classifier health: %w", err)
	}
	return nil
}
