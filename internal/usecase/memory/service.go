package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

// DocumentRepository is the vector store contract consumed by this service.
type DocumentRepository interface {
	Search(ctx context.Context, d domain.Domain, vector []float32, topK int, filters map[string]string) ([]domain.SearchResult, error)
	UpsertBatch(ctx context.Context, d domain.Domain, docs []domain.Document) error
	Count(ctx context.Context, d domain.Domain) (int, error)
}

// HistoryRepository is the conversation log contract consumed by this service.
type HistoryRepository interface {
	Append(ctx context.Context, sessionID, userMessage, botResponse string, metadata map[string]string) (string, error)
	History(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error)
}

// Service is the retrieval layer: vector search over the per-domain indexes
// plus the append-only conversation log.
type Service struct {
	docs          DocumentRepository
	history       HistoryRepository
	topKPerDomain int
	logger        *zap.Logger
}

// New creates a memory service.
func New(docs DocumentRepository, history HistoryRepository, topKPerDomain int, logger *zap.Logger) *Service {
	return &Service{
		docs:          docs,
		history:       history,
		topKPerDomain: topKPerDomain,
		logger:        logger,
	}
}

// Search runs a single-domain KNN query.
func (s *Service) Search(
	ctx context.Context, d domain.Domain, vector []float32, topK int, filters map[string]string,
) ([]domain.SearchResult, error) {
	if !domain.ValidDomain(d) {
		return nil, fmt.Errorf("unknown domain %q: %w", d, domain.ErrInvalidRequest)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector: %w", domain.ErrInvalidRequest)
	}
	if topK <= 0 {
		topK = s.topKPerDomain
	}

	results, err := s.docs.Search(ctx, d, vector, topK, filters)
	if errors.Is(err, domain.ErrEmptyResult) {
		return []domain.SearchResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", d, err)
	}
	return results, nil
}

// MultiDomainSearch queries the requested domains in parallel. A failed
// domain degrades to an empty list and sets the Partial flag; retrieval
// keeps working on whatever domains still answer. Domains defaults to all
// three when empty.
func (s *Service) MultiDomainSearch(
	ctx context.Context, vector []float32, topKPerDomain int, domains []domain.Domain,
) (domain.MultiSearchResult, error) {
	if len(vector) == 0 {
		return domain.MultiSearchResult{}, fmt.Errorf("empty query vector: %w", domain.ErrInvalidRequest)
	}
	if topKPerDomain <= 0 {
		topKPerDomain = s.topKPerDomain
	}
	if len(domains) == 0 {
		domains = domain.AllDomains()
	}
	for _, d := range domains {
		if !domain.ValidDomain(d) {
			return domain.MultiSearchResult{}, fmt.Errorf("unknown domain %q: %w", d, domain.ErrInvalidRequest)
		}
	}

	var (
		mu     sync.Mutex
		out    domain.MultiSearchResult
		wg     sync.WaitGroup
		failed bool
	)

	for _, d := range domains {
		wg.Add(1)
		go func(d domain.Domain) {
			defer wg.Done()

			results, err := s.docs.Search(ctx, d, vector, topKPerDomain, nil)
			mu.Lock()
			defer mu.Unlock()

			switch {
			case errors.Is(err, domain.ErrEmptyResult):
				results = []domain.SearchResult{}
			case err != nil:
				s.logger.Warn("domain search failed, returning empty set",
					zap.String("domain", string(d)), zap.Error(err))
				failed = true
				results = []domain.SearchResult{}
			}
			switch d {
			case domain.DomainAssistant:
				out.Assistant = results
			case domain.DomainPortfolio:
				out.Portfolio = results
			case domain.DomainKnowledge:
				out.Knowledge = results
			}
		}(d)
	}

	wg.Wait()
	out.Partial = failed
	return out, nil
}

// Store appends one conversation exchange and returns the message ID.
// The log is append-only; there is no update path.
func (s *Service) Store(
	ctx context.Context, sessionID, userMessage, botResponse string, metadata map[string]string,
) (string, error) {
	if sessionID == "" || userMessage == "" {
		return "", fmt.Errorf("session_id and user_message are required: %w", domain.ErrInvalidRequest)
	}

	id, err := s.history.Append(ctx, sessionID, userMessage, botResponse, metadata)
	if err != nil {
		return "", fmt.Errorf("store turn: %w", err)
	}
	return id, nil
}

// History returns the most recent turns in chronological order.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required: %w", domain.ErrInvalidRequest)
	}

	turns, err := s.history.History(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return turns, nil
}

// IngestDocuments batch-upserts documents with precomputed embeddings into
// one domain. This is the one-off seeding path, not a runtime dependency of
// the chat pipeline.
func (s *Service) IngestDocuments(ctx context.Context, d domain.Domain, docs []domain.Document) (int, error) {
	if !domain.ValidDomain(d) {
		return 0, fmt.Errorf("unknown domain %q: %w", d, domain.ErrInvalidRequest)
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("no documents: %w", domain.ErrInvalidRequest)
	}
	for i := range docs {
		if docs[i].ID == "" || docs[i].Content == "" || len(docs[i].Vector) == 0 {
			return 0, fmt.Errorf("document %d needs id, content and embedding: %w", i, domain.ErrInvalidRequest)
		}
	}

	if err := s.docs.UpsertBatch(ctx, d, docs); err != nil {
		return 0, fmt.Errorf("ingest %d documents into %s: %w", len(docs), d, err)
	}
	return len(docs), nil
}
