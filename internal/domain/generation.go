package domain

import "context"

// Generator is the text generation contract between layers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// GenerationResult carries the raw completion text and usage.
type GenerationResult struct {
	Text             string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// Classifier assigns one of a closed set of intent labels to a text.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (Classification, error)
}
