package chi

import (
	"encoding/json"
	"net/http"

	gochi "github.com/go-chi/chi/v5"

	"github.com/neo-assistant/portfolio-chat/internal/client"
	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
	safetyuc "github.com/neo-assistant/portfolio-chat/internal/usecase/safety"
)

// SafetyServer exposes the validation and rate-limit endpoints. The checks
// are pure and synchronous so there is no error mapper here: every valid
// request gets a 200 verdict.
type SafetyServer struct {
	validator *safetyuc.Validator
	limiter   *safetyuc.RateLimiter
	health    *healthuc.Service
}

// NewSafetyServer creates the safety HTTP server.
func NewSafetyServer(
	validator *safetyuc.Validator,
	limiter *safetyuc.RateLimiter,
	health *healthuc.Service,
) *SafetyServer {
	return &SafetyServer{
		validator: validator,
		limiter:   limiter,
		health:    health,
	}
}

// Routes mounts all safety endpoints on r.
func (s *SafetyServer) Routes(r gochi.Router) {
	r.Post("/validate/input", s.validateInput)
	r.Post("/validate/output", s.validateOutput)
	r.Post("/rate-limit", s.rateLimit)
	r.Get("/health", HealthHandler(s.health))
	r.Get("/metrics", MetricsHandler())
}

func (s *SafetyServer) validateInput(w http.ResponseWriter, r *http.Request) {
	var req client.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "text is required")
		return
	}

	verdict := s.validator.ValidateInput(req.Text)
	writeJSON(w, http.StatusOK, client.ValidateInputResponse{
		IsSafe:       verdict.IsSafe,
		Issues:       verdict.Issues,
		FilteredText: verdict.FilteredText,
	})
}

func (s *SafetyServer) validateOutput(w http.ResponseWriter, r *http.Request) {
	var req client.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "text is required")
		return
	}

	verdict := s.validator.ValidateOutput(req.Text)
	writeJSON(w, http.StatusOK, client.ValidateOutputResponse{
		IsSafe:     verdict.IsSafe,
		Confidence: verdict.Confidence,
		Issues:     verdict.Issues,
	})
}

// rateLimit answers 200 for both outcomes. Whether the caller enforces the
// verdict is its own business; this endpoint only reports it.
func (s *SafetyServer) rateLimit(w http.ResponseWriter, r *http.Request) {
	var req client.RateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Identifier == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "identifier is required")
		return
	}

	verdict := s.limiter.Check(req.Identifier)
	writeJSON(w, http.StatusOK, client.RateLimitResponse{
		Allowed:        verdict.Allowed,
		Remaining:      verdict.Remaining,
		ResetInSeconds: verdict.ResetInSeconds,
	})
}
