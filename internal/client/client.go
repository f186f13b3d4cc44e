// Package client holds thin typed HTTP clients for the portfolio-chat
// services. Each call is one POST with a bounded timeout; there are no
// retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

const defaultTimeout = 30 * time.Second

// base is the shared JSON POST helper.
type base struct {
	baseURL string
	http    *http.Client
}

func newBase(baseURL string, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return base{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// postJSON sends req as JSON and decodes the 2xx body into resp. Deadline
// hits map to ErrServiceTimeout, any other non-2xx outcome to
// ErrServiceError.
func (b *base) postJSON(ctx context.Context, path string, req, resp any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := b.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%s: %w", path, domain.ErrServiceTimeout)
		}
		return fmt.Errorf("%s: %w: %w", path, domain.ErrServiceError, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return fmt.Errorf("%s returned %d: %s: %w",
			path, httpResp.StatusCode, strings.TrimSpace(string(body)), domain.ErrServiceError)
	}

	if resp == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", path, domain.ErrServiceError, err)
	}
	return nil
}

// getHealth probes GET /health. A degraded (503) report is an error.
func (b *base) getHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("health: %w", domain.ErrServiceTimeout)
		}
		return fmt.Errorf("health: %w: %w", domain.ErrServiceError, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d: %w", resp.StatusCode, domain.ErrServiceError)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
