package reasoning

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

const apologyFallback = "I'm sorry, I couldn't come up with a good answer to that. " +
	"Could you rephrase the question?"

// GenerateInput is one generation request.
type GenerateInput struct {
	Query   string
	Intent  string
	Context []domain.SearchResult
}

// GenerateOutput is the cleaned response with a heuristic confidence.
type GenerateOutput struct {
	Response   string
	Confidence float64
	TokensUsed int
}

// Service wraps the generation provider with prompt building, response
// cleanup and a confidence heuristic.
type Service struct {
	generator     domain.Generator
	assistantName string
	logger        *zap.Logger
}

// New creates a reasoning service.
func New(g domain.Generator, assistantName string, logger *zap.Logger) *Service {
	return &Service{generator: g, assistantName: assistantName, logger: logger}
}

// Generate produces an answer for the query. Provider failures propagate;
// low-quality completions degrade to an apology instead of failing.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	if in.Query == "" {
		return GenerateOutput{}, fmt.Errorf("empty query: %w", domain.ErrInvalidRequest)
	}

	prompt := buildPrompt(s.assistantName, in.Query, in.Intent, in.Context)

	result, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return GenerateOutput{}, fmt.Errorf("generate: %w", err)
	}

	text := cleanupResponse(result.Text)
	if len(strings.TrimSpace(text)) < 10 {
		s.logger.Warn("generation too short, using fallback",
			zap.String("raw", result.Text))
		return GenerateOutput{
			Response:   apologyFallback,
			Confidence: 0.3,
			TokensUsed: result.CompletionTokens,
		}, nil
	}

	return GenerateOutput{
		Response:   text,
		Confidence: scoreConfidence(text),
		TokensUsed: result.CompletionTokens,
	}, nil
}

// cleanupResponse trims whitespace and, when the model was cut off
// mid-sentence, drops the dangling fragment. The fragment is only dropped
// when the last sentence boundary lies past the halfway mark, so a single
// long sentence is never reduced to nothing.
func cleanupResponse(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
		return text
	}

	cut := lastSentenceEnd(text)
	if cut > len(text)/2 {
		return strings.TrimSpace(text[:cut+1])
	}
	return text
}

func lastSentenceEnd(text string) int {
	last := -1
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			last = i
		}
	}
	return last
}

// scoreConfidence is an uncalibrated shape heuristic: it rewards answers of
// reasonable length that end cleanly and penalizes visible truncation. It
// says nothing about factual accuracy.
func scoreConfidence(text string) float64 {
	score := 0.5
	if n := len(text); n >= 20 && n <= 800 {
		score += 0.3
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
		score += 0.1
	}
	if strings.HasSuffix(text, "...") {
		score -= 0.2
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
