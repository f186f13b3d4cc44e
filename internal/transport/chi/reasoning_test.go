package chi

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/client"
	"github.com/neo-assistant/portfolio-chat/internal/domain"
	reasoninguc "github.com/neo-assistant/portfolio-chat/internal/usecase/reasoning"
)

func newReasoningTestServer(t *testing.T, g *mockGenerator) *httptestServer {
	t.Helper()
	svc := reasoninguc.New(g, "Neo", zap.NewNop())
	srv := NewReasoningServer(svc, alwaysHealthy(), testErrorMapper())
	return wrapServer(t, srv.Routes)
}

func TestReasoning_Generate(t *testing.T) {
	var prompt string
	g := &mockGenerator{
		generateFunc: func(_ context.Context, p string) (domain.GenerationResult, error) {
			prompt = p
			return domain.GenerationResult{Text: "RAG retrieves documents before generating.", CompletionTokens: 8}, nil
		},
	}
	ts := newReasoningTestServer(t, g)

	var resp client.GenerateResponse
	status := ts.post(t, "/generate", client.GenerateRequest{
		Query: "What is RAG?",
		Context: []client.SearchResultItem{
			{Content: "RAG stands for retrieval augmented generation.", Score: 0.92,
				Metadata: map[string]string{"name": "Glossary"}},
		},
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if resp.Response == "" || resp.Confidence <= 0 {
		t.Errorf("unexpected response %+v", resp)
	}
	if !strings.Contains(prompt, "retrieval augmented generation") {
		t.Errorf("context did not reach the prompt: %q", prompt)
	}
}

func TestReasoning_GenerateEmptyQuery(t *testing.T) {
	ts := newReasoningTestServer(t, &mockGenerator{})

	var errResp ErrorResponse
	status := ts.post(t, "/generate", client.GenerateRequest{}, &errResp)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
}

func TestReasoning_GenerateProviderError(t *testing.T) {
	g := &mockGenerator{
		generateFunc: func(_ context.Context, _ string) (domain.GenerationResult, error) {
			return domain.GenerationResult{}, domain.ErrGenerationProviderError
		},
	}
	ts := newReasoningTestServer(t, g)

	var errResp ErrorResponse
	status := ts.post(t, "/generate", client.GenerateRequest{Query: "What is RAG?"}, &errResp)
	if status != http.StatusBadGateway {
		t.Fatalf("status = %d", status)
	}
	if errResp.Code != CodeUpstreamError {
		t.Errorf("code = %q", errResp.Code)
	}
}

func TestReasoning_Analyze(t *testing.T) {
	ts := newReasoningTestServer(t, &mockGenerator{})

	var resp client.AnalyzeResponse
	status := ts.post(t, "/analyze", client.AnalyzeRequest{Query: "What is RAG?"}, &resp)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if resp.Complexity != reasoninguc.ComplexitySimple {
		t.Errorf("complexity = %q", resp.Complexity)
	}
	if !resp.RequiresContext {
		t.Error("context need not detected")
	}
	if resp.SuggestedStrategy != reasoninguc.StrategyRAGWithContext {
		t.Errorf("strategy = %q", resp.SuggestedStrategy)
	}
	if resp.EstimatedResponseType != reasoninguc.ResponseTypeInformative {
		t.Errorf("responseType = %q", resp.EstimatedResponseType)
	}
}

func TestReasoning_AnalyzeEmptyQuery(t *testing.T) {
	ts := newReasoningTestServer(t, &mockGenerator{})

	var errResp ErrorResponse
	status := ts.post(t, "/analyze", client.AnalyzeRequest{}, &errResp)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
}
