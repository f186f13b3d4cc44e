package perception

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

// Service turns raw text into model-ready signals: unit-length embeddings
// and a zero-shot intent classification.
type Service struct {
	embedder   domain.Embedder
	classifier domain.Classifier
	dimensions int
	batchSize  int
	logger     *zap.Logger
}

// New creates a perception service.
func New(e domain.Embedder, c domain.Classifier, dimensions, batchSize int, logger *zap.Logger) *Service {
	return &Service{
		embedder:   e,
		classifier: c,
		dimensions: dimensions,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Embed vectorizes one text. The result is normalized to unit length and
// checked against the configured index dimension.
func (s *Service) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if text == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("empty text: %w", domain.ErrInvalidRequest)
	}

	result, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if len(result.Embedding) != s.dimensions {
		return domain.EmbeddingResult{}, fmt.Errorf(
			"provider returned %d dims, expected %d: %w",
			len(result.Embedding), s.dimensions, domain.ErrVectorDimMismatch)
	}

	result.Embedding = domain.Normalize(result.Embedding)
	return result, nil
}

// EmbedBatch vectorizes many texts, chunked at the configured batch size so
// one oversized request never hits the provider.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("empty batch: %w", domain.ErrInvalidRequest)
	}
	for i, text := range texts {
		if text == "" {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("empty text at index %d: %w", i, domain.ErrInvalidRequest)
		}
	}

	total := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		chunk, err := s.batchEmbed(ctx, texts[start:end])
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(chunk.Embeddings) != end-start {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"provider returned %d vectors for %d texts: %w",
				len(chunk.Embeddings), end-start, domain.ErrEmbeddingProviderError)
		}

		for _, vec := range chunk.Embeddings {
			if len(vec) != s.dimensions {
				return domain.BatchEmbeddingResult{}, fmt.Errorf(
					"provider returned %d dims, expected %d: %w",
					len(vec), s.dimensions, domain.ErrVectorDimMismatch)
			}
			total.Embeddings = append(total.Embeddings, domain.Normalize(vec))
		}
		total.PromptTokens += chunk.PromptTokens
		total.TotalTokens += chunk.TotalTokens
	}

	return total, nil
}

// batchEmbed uses the provider's native batch call when it has one, and
// falls back to per-text embedding otherwise.
func (s *Service) batchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := s.embedder.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, s.embedder, texts)
}

// Classify assigns an intent from the fixed label set. On classifier failure
// the caller decides the fallback; this layer only reports the error.
func (s *Service) Classify(ctx context.Context, text string) (domain.Classification, error) {
	if text == "" {
		return domain.Classification{}, fmt.Errorf("empty text: %w", domain.ErrInvalidRequest)
	}

	result, err := s.classifier.Classify(ctx, text, domain.IntentLabels())
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify: %w", err)
	}

	s.logger.Debug("classified intent",
		zap.String("intent", result.Intent),
		zap.Float64("confidence", result.Confidence))
	return result, nil
}
