package chi

import (
	"encoding/json"
	"net/http"

	gochi "github.com/go-chi/chi/v5"

	orchestratoruc "github.com/neo-assistant/portfolio-chat/internal/usecase/orchestrator"
)

// ChatRequest is the public POST /chat payload.
type ChatRequest struct {
	Query     string `json:"query"`
	TopK      int    `json:"top_k,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatSource is one cited context document.
type ChatSource struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// ChatMetadata carries pipeline facts alongside the answer.
type ChatMetadata struct {
	Intent           string  `json:"intent"`
	IntentConfidence float64 `json:"intent_confidence"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
	SessionID        string  `json:"session_id"`
	ContextDocsFound int     `json:"context_docs_found"`
	PartialRetrieval bool    `json:"partial_retrieval,omitempty"`
}

// ChatResponse is the public POST /chat result.
type ChatResponse struct {
	Response string       `json:"response"`
	Sources  []ChatSource `json:"sources"`
	Query    string       `json:"query"`
	Metadata ChatMetadata `json:"metadata"`
}

// OrchestratorServer exposes the public chat endpoint.
type OrchestratorServer struct {
	orchestrator *orchestratoruc.Service
	errors       *ErrorMapper
}

// NewOrchestratorServer creates the orchestrator HTTP server.
func NewOrchestratorServer(orchestrator *orchestratoruc.Service, errors *ErrorMapper) *OrchestratorServer {
	return &OrchestratorServer{orchestrator: orchestrator, errors: errors}
}

// Routes mounts all orchestrator endpoints on r.
func (s *OrchestratorServer) Routes(r gochi.Router) {
	r.Post("/chat", s.chat)
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", MetricsHandler())
}

func (s *OrchestratorServer) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}

	out, err := s.orchestrator.Chat(r.Context(), orchestratoruc.ChatInput{
		Query:     req.Query,
		SessionID: req.SessionID,
		TopK:      req.TopK,
	})
	if err != nil {
		s.errors.Handle(w, err)
		return
	}

	sources := make([]ChatSource, len(out.Sources))
	for i, src := range out.Sources {
		sources[i] = ChatSource{Name: src.Name, Type: src.Type, Score: src.Score}
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response: out.Response,
		Sources:  sources,
		Query:    out.Query,
		Metadata: ChatMetadata{
			Intent:           out.Metadata.Intent,
			IntentConfidence: out.Metadata.IntentConfidence,
			ProcessingTimeMS: out.Metadata.ProcessingTimeMS,
			SessionID:        out.Metadata.SessionID,
			ContextDocsFound: out.Metadata.ContextDocsFound,
			PartialRetrieval: out.Metadata.PartialRetrieval,
		},
	})
}

// healthCheck aggregates the four dependency probes instead of using the
// in-process health service: the orchestrator owns no state of its own.
func (s *OrchestratorServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	results := s.orchestrator.Health(r.Context())

	checks := make(map[string]string, len(results))
	status := http.StatusOK
	overall := "ok"
	for name, err := range results {
		if err != nil {
			checks[name] = "error"
			status = http.StatusServiceUnavailable
			overall = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, status, HealthResponse{Status: overall, Checks: checks})
}
