package chi

import (
	"encoding/json"
	"net/http"

	gochi "github.com/go-chi/chi/v5"

	"github.com/neo-assistant/portfolio-chat/internal/client"
	"github.com/neo-assistant/portfolio-chat/internal/domain"
	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
	reasoninguc "github.com/neo-assistant/portfolio-chat/internal/usecase/reasoning"
)

// ReasoningServer exposes the generation and analysis endpoints.
type ReasoningServer struct {
	reasoning *reasoninguc.Service
	health    *healthuc.Service
	errors    *ErrorMapper
}

// NewReasoningServer creates the reasoning HTTP server.
func NewReasoningServer(
	reasoning *reasoninguc.Service,
	health *healthuc.Service,
	errors *ErrorMapper,
) *ReasoningServer {
	return &ReasoningServer{reasoning: reasoning, health: health, errors: errors}
}

// Routes mounts all reasoning endpoints on r.
func (s *ReasoningServer) Routes(r gochi.Router) {
	r.Post("/generate", s.generate)
	r.Post("/analyze", s.analyze)
	r.Get("/health", HealthHandler(s.health))
	r.Get("/metrics", MetricsHandler())
}

func (s *ReasoningServer) generate(w http.ResponseWriter, r *http.Request) {
	var req client.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	contextDocs := make([]domain.SearchResult, len(req.Context))
	for i, item := range req.Context {
		contextDocs[i] = domain.SearchResult{
			Content:  item.Content,
			Metadata: item.Metadata,
			Score:    item.Score,
			Domain:   domain.Domain(item.Domain),
		}
	}

	out, err := s.reasoning.Generate(r.Context(), reasoninguc.GenerateInput{
		Query:   req.Query,
		Intent:  req.Intent,
		Context: contextDocs,
	})
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client.GenerateResponse{
		Response:   out.Response,
		Confidence: out.Confidence,
		TokensUsed: out.TokensUsed,
	})
}

func (s *ReasoningServer) analyze(w http.ResponseWriter, r *http.Request) {
	var req client.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}

	analysis := reasoninguc.Analyze(req.Query)
	writeJSON(w, http.StatusOK, client.AnalyzeResponse{
		Complexity:            analysis.Complexity,
		RequiresContext:       analysis.RequiresContext,
		WordCount:             analysis.WordCount,
		SuggestedStrategy:     analysis.SuggestedStrategy,
		EstimatedResponseType: analysis.ResponseType,
	})
}
