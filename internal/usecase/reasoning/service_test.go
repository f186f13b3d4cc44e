package reasoning

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

type mockGenerator struct {
	result domain.GenerationResult
	err    error
	prompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (domain.GenerationResult, error) {
	m.prompt = prompt
	return m.result, m.err
}

func newTestService(g *mockGenerator) *Service {
	return New(g, "Neo", zap.NewNop())
}

func TestGenerate_HappyPath(t *testing.T) {
	g := &mockGenerator{result: domain.GenerationResult{
		Text:             "I have built a RAG chatbot and several data pipelines.",
		CompletionTokens: 14,
	}}
	svc := newTestService(g)

	out, err := svc.Generate(context.Background(), GenerateInput{
		Query:  "What projects have you built?",
		Intent: domain.IntentProjects,
		Context: []domain.SearchResult{
			{Content: "Built a RAG chatbot", Metadata: map[string]string{"name": "Chatbot"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Response != g.result.Text {
		t.Errorf("response: %q", out.Response)
	}
	if out.TokensUsed != 14 {
		t.Errorf("tokens: %d", out.TokensUsed)
	}
	// well-formed answer in range, ends with a period: 0.5+0.3+0.1
	if out.Confidence < 0.89 || out.Confidence > 0.91 {
		t.Errorf("confidence: %g", out.Confidence)
	}
}

func TestGenerate_EmptyQuery(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	_, err := svc.Generate(context.Background(), GenerateInput{})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	g := &mockGenerator{err: domain.ErrGenerationProviderError}
	svc := newTestService(g)

	_, err := svc.Generate(context.Background(), GenerateInput{Query: "hello"})
	if !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Fatalf("expected ErrGenerationProviderError, got %v", err)
	}
}

func TestGenerate_ShortOutputFallsBack(t *testing.T) {
	g := &mockGenerator{result: domain.GenerationResult{Text: "Ok."}}
	svc := newTestService(g)

	out, err := svc.Generate(context.Background(), GenerateInput{Query: "What is RAG?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Response != apologyFallback {
		t.Errorf("expected apology fallback, got %q", out.Response)
	}
	if out.Confidence != 0.3 {
		t.Errorf("confidence: %g", out.Confidence)
	}
}

func TestGenerate_PromptContainsContext(t *testing.T) {
	g := &mockGenerator{result: domain.GenerationResult{
		Text: "RAG combines retrieval with generation to ground answers.",
	}}
	svc := newTestService(g)

	_, err := svc.Generate(context.Background(), GenerateInput{
		Query:  "What is RAG?",
		Intent: domain.IntentConversation,
		Context: []domain.SearchResult{
			{Content: "RAG stands for retrieval-augmented generation", Metadata: map[string]string{"name": "RAG"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(g.prompt, "RAG: RAG stands for retrieval-augmented generation") {
		t.Errorf("prompt missing context line:\n%s", g.prompt)
	}
	if !strings.Contains(g.prompt, "What is RAG?") {
		t.Errorf("prompt missing query:\n%s", g.prompt)
	}
}

// --- prompt builder ---

func TestBuildPrompt_IntentTemplates(t *testing.T) {
	greeting := buildPrompt("Neo", "hi there", domain.IntentGreeting, nil)
	if !strings.Contains(greeting, "greeted") {
		t.Errorf("greeting template not used:\n%s", greeting)
	}

	farewell := buildPrompt("Neo", "bye", domain.IntentFarewell, nil)
	if !strings.Contains(farewell, "goodbye") {
		t.Errorf("farewell template not used:\n%s", farewell)
	}

	standard := buildPrompt("Neo", "what do you do?", domain.IntentConversation, nil)
	if !strings.Contains(standard, noContextLine) {
		t.Errorf("empty context framing missing:\n%s", standard)
	}
}

func TestBuildPrompt_CapsContextDocs(t *testing.T) {
	docs := make([]domain.SearchResult, 6)
	for i := range docs {
		docs[i] = domain.SearchResult{
			Content:  "doc",
			Metadata: map[string]string{"name": string(rune('A' + i))},
		}
	}

	prompt := buildPrompt("Neo", "question?", domain.IntentProjects, docs)
	if !strings.Contains(prompt, "D: doc") {
		t.Error("fourth doc missing from prompt")
	}
	if strings.Contains(prompt, "E: doc") {
		t.Error("fifth doc leaked into prompt, cap is 4")
	}
}

func TestBuildPrompt_UnnamedDocDefaults(t *testing.T) {
	prompt := buildPrompt("Neo", "q?", domain.IntentProjects,
		[]domain.SearchResult{{Content: "anonymous fact"}})
	if !strings.Contains(prompt, "Content: anonymous fact") {
		t.Errorf("unnamed doc not defaulted:\n%s", prompt)
	}
}

// --- cleanup ---

func TestCleanupResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean sentence", "All done.", "All done."},
		{"whitespace trimmed", "  hello there.  ", "hello there."},
		{
			"truncated past halfway",
			"The first sentence is complete. And then it was cut o",
			"The first sentence is complete.",
		},
		{
			"truncated before halfway",
			"Short. But this much longer dangling fragment keeps going and going",
			"Short. But this much longer dangling fragment keeps going and going",
		},
		{"no boundary at all", "just a fragment without an end", "just a fragment without an end"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanupResponse(tt.in); got != tt.want {
				t.Errorf("cleanupResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- confidence ---

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"ideal answer", "This is a well formed answer about the portfolio.", 0.9},
		{"too short no ending", "tiny", 0.5},
		{"truncation marker", strings.Repeat("a", 30) + "...", 0.7},
		{"very long clean", strings.Repeat("word ", 200) + "end.", 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreConfidence(tt.text)
			if got < tt.want-1e-9 || got > tt.want+1e-9 {
				t.Errorf("scoreConfidence(%q) = %g, want %g", tt.text, got, tt.want)
			}
		})
	}
}
