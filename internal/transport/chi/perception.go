package chi

import (
	"encoding/json"
	"net/http"

	gochi "github.com/go-chi/chi/v5"

	"github.com/neo-assistant/portfolio-chat/internal/client"
	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
	perceptionuc "github.com/neo-assistant/portfolio-chat/internal/usecase/perception"
)

const maxBatchTexts = 100

// PerceptionServer exposes the embedding and classification endpoints.
type PerceptionServer struct {
	perception *perceptionuc.Service
	health     *healthuc.Service
	errors     *ErrorMapper
}

// NewPerceptionServer creates the perception HTTP server.
func NewPerceptionServer(
	perception *perceptionuc.Service,
	health *healthuc.Service,
	errors *ErrorMapper,
) *PerceptionServer {
	return &PerceptionServer{perception: perception, health: health, errors: errors}
}

// Routes mounts all perception endpoints on r.
func (s *PerceptionServer) Routes(r gochi.Router) {
	r.Post("/embed", s.embed)
	r.Post("/embed/batch", s.embedBatch)
	r.Post("/classify", s.classify)
	r.Get("/health", HealthHandler(s.health))
	r.Get("/metrics", MetricsHandler())
}

func (s *PerceptionServer) embed(w http.ResponseWriter, r *http.Request) {
	var req client.EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.perception.Embed(r.Context(), req.Text)
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client.EmbedResponse{
		Embedding:    result.Embedding,
		Dimensions:   len(result.Embedding),
		PromptTokens: result.PromptTokens,
		TotalTokens:  result.TotalTokens,
	})
}

func (s *PerceptionServer) embedBatch(w http.ResponseWriter, r *http.Request) {
	var req client.EmbedBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "texts must not be empty")
		return
	}
	if len(req.Texts) > maxBatchTexts {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "too many texts in one batch")
		return
	}

	result, err := s.perception.EmbedBatch(r.Context(), req.Texts)
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client.EmbedBatchResponse{
		Embeddings:  result.Embeddings,
		Count:       len(result.Embeddings),
		TotalTokens: result.TotalTokens,
	})
}

func (s *PerceptionServer) classify(w http.ResponseWriter, r *http.Request) {
	var req client.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.perception.Classify(r.Context(), req.Text)
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client.ClassifyResponse{
		Intent:     result.Intent,
		Confidence: result.Confidence,
		AllIntents: result.Labels,
		AllScores:  result.Scores,
	})
}
