package chi

import (
	"context"
	"net/http/httptest"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
)

// mockEmbedder implements the embedding contracts with func fields.
type mockEmbedder struct {
	embedFunc      func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	batchEmbedFunc func(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{3, 4, 0, 0}, TotalTokens: 2}, nil
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.batchEmbedFunc != nil {
		return m.batchEmbedFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: vectors, TotalTokens: len(texts)}, nil
}

// mockClassifier implements domain.Classifier.
type mockClassifier struct {
	classifyFunc func(ctx context.Context, text string, labels []string) (domain.Classification, error)
}

func (m *mockClassifier) Classify(ctx context.Context, text string, labels []string) (domain.Classification, error) {
	if m.classifyFunc != nil {
		return m.classifyFunc(ctx, text, labels)
	}
	return domain.Classification{
		Intent:     domain.IntentProjects,
		Confidence: 0.8,
		Labels:     labels,
		Scores:     make([]float64, len(labels)),
	}, nil
}

// mockDocRepo implements memory's DocumentRepository.
type mockDocRepo struct {
	searchFunc      func(ctx context.Context, d domain.Domain, vector []float32, topK int, filters map[string]string) ([]domain.SearchResult, error)
	upsertBatchFunc func(ctx context.Context, d domain.Domain, docs []domain.Document) error
}

func (m *mockDocRepo) Search(
	ctx context.Context, d domain.Domain, vector []float32, topK int, filters map[string]string,
) ([]domain.SearchResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, d, vector, topK, filters)
	}
	return nil, nil
}

func (m *mockDocRepo) UpsertBatch(ctx context.Context, d domain.Domain, docs []domain.Document) error {
	if m.upsertBatchFunc != nil {
		return m.upsertBatchFunc(ctx, d, docs)
	}
	return nil
}

func (m *mockDocRepo) Count(ctx context.Context, d domain.Domain) (int, error) {
	return 0, nil
}

// mockHistoryRepo implements memory's HistoryRepository.
type mockHistoryRepo struct {
	appendFunc  func(ctx context.Context, sessionID, userMessage, botResponse string, metadata map[string]string) (string, error)
	historyFunc func(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error)
}

func (m *mockHistoryRepo) Append(
	ctx context.Context, sessionID, userMessage, botResponse string, metadata map[string]string,
) (string, error) {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, sessionID, userMessage, botResponse, metadata)
	}
	return "msg-1", nil
}

func (m *mockHistoryRepo) History(
	ctx context.Context, sessionID string, limit int,
) ([]domain.ConversationTurn, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, sessionID, limit)
	}
	return nil, nil
}

// mockGenerator implements domain.Generator.
type mockGenerator struct {
	generateFunc func(ctx context.Context, prompt string) (domain.GenerationResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return domain.GenerationResult{Text: "A complete generated answer."}, nil
}

func alwaysHealthy() *healthuc.Service {
	return healthuc.New(0).Register("self", healthuc.CheckerFunc(func(context.Context) error {
		return nil
	}))
}

func newTestServer(routes func(r gochi.Router)) *httptest.Server {
	r := gochi.NewRouter()
	routes(r)
	return httptest.NewServer(r)
}

func testErrorMapper() *ErrorMapper {
	return NewErrorMapper(zap.NewNop())
}
