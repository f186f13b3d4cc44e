package chi

import (
	"encoding/json"
	"net/http"

	gochi "github.com/go-chi/chi/v5"

	"github.com/neo-assistant/portfolio-chat/internal/client"
	"github.com/neo-assistant/portfolio-chat/internal/domain"
	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
	memoryuc "github.com/neo-assistant/portfolio-chat/internal/usecase/memory"
)

// MemoryServer exposes the retrieval, history and ingestion endpoints.
type MemoryServer struct {
	memory *memoryuc.Service
	health *healthuc.Service
	errors *ErrorMapper
}

// NewMemoryServer creates the memory HTTP server.
func NewMemoryServer(
	memory *memoryuc.Service,
	health *healthuc.Service,
	errors *ErrorMapper,
) *MemoryServer {
	return &MemoryServer{memory: memory, health: health, errors: errors}
}

// Routes mounts all memory endpoints on r.
func (s *MemoryServer) Routes(r gochi.Router) {
	r.Post("/search", s.search)
	r.Post("/search/multi", s.multiSearch)
	r.Post("/store", s.store)
	r.Post("/history", s.history)
	r.Post("/documents", s.ingest)
	r.Get("/health", HealthHandler(s.health))
	r.Get("/metrics", MetricsHandler())
}

func (s *MemoryServer) search(w http.ResponseWriter, r *http.Request) {
	var req client.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.memory.Search(r.Context(), domain.Domain(req.Domain), req.Embedding, req.TopK, req.Filters)
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	items := resultsToWire(results)
	writeJSON(w, http.StatusOK, client.SearchResponse{Results: items, Count: len(items)})
}

func (s *MemoryServer) multiSearch(w http.ResponseWriter, r *http.Request) {
	var req client.MultiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	domains := make([]domain.Domain, 0, len(req.Domains))
	for _, d := range req.Domains {
		domains = append(domains, domain.Domain(d))
	}

	result, err := s.memory.MultiDomainSearch(r.Context(), req.Embedding, req.TopKPerDomain, domains)
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client.MultiSearchResponse{
		Assistant:  resultsToWire(result.Assistant),
		Portfolio:  resultsToWire(result.Portfolio),
		Knowledge:  resultsToWire(result.Knowledge),
		Partial:    result.Partial,
		TotalCount: result.TotalCount(),
	})
}

func (s *MemoryServer) store(w http.ResponseWriter, r *http.Request) {
	var req client.StoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, err := s.memory.Store(r.Context(), req.SessionID, req.UserMessage, req.BotResponse, req.Metadata)
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, client.StoreResponse{MessageID: id, Status: "stored"})
}

func (s *MemoryServer) history(w http.ResponseWriter, r *http.Request) {
	var req client.HistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	turns, err := s.memory.History(r.Context(), req.SessionID, req.Limit)
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	wire := make([]client.HistoryTurn, len(turns))
	for i, t := range turns {
		wire[i] = client.HistoryTurn{
			MessageID:   t.MessageID,
			SessionID:   t.SessionID,
			UserMessage: t.UserMessage,
			BotResponse: t.BotResponse,
			Timestamp:   t.Timestamp,
			Metadata:    t.Metadata,
		}
	}
	writeJSON(w, http.StatusOK, client.HistoryResponse{History: wire, Count: len(wire)})
}

func (s *MemoryServer) ingest(w http.ResponseWriter, r *http.Request) {
	var req client.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docs := make([]domain.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = domain.Document{
			ID:       d.ID,
			Content:  d.Content,
			Metadata: d.Metadata,
			Vector:   d.Embedding,
		}
	}

	n, err := s.memory.IngestDocuments(r.Context(), domain.Domain(req.Domain), docs)
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, client.IngestResponse{Ingested: n})
}

func resultsToWire(results []domain.SearchResult) []client.SearchResultItem {
	items := make([]client.SearchResultItem, len(results))
	for i, res := range results {
		items[i] = client.SearchResultItem{
			Content:  res.Content,
			Metadata: res.Metadata,
			Score:    res.Score,
			Domain:   string(res.Domain),
		}
	}
	return items
}
