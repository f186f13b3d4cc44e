package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/neo-assistant/portfolio-chat/internal/domain"
)

// Wire error codes shared by all services.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeRateLimited      = "rate_limited"
	CodeServiceTimeout   = "service_timeout"
	CodeUpstreamError    = "upstream_error"
	CodeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error body used by every endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ErrorMapper maps domain errors onto HTTP responses via an ordered handler
// table. Order matters: the first matching sentinel wins.
type ErrorMapper struct {
	handlers []errorHandler
	logger   *zap.Logger
}

// NewErrorMapper builds the shared sentinel table.
func NewErrorMapper(logger *zap.Logger) *ErrorMapper {
	return &ErrorMapper{
		logger: logger,
		handlers: []errorHandler{
			sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
			sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeValidationFailed),
			sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
			sentinelHandler(domain.ErrServiceTimeout, http.StatusGatewayTimeout, CodeServiceTimeout),
			sentinelHandler(domain.ErrServiceError, http.StatusBadGateway, CodeUpstreamError),
			sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeUpstreamError),
			sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeUpstreamError),
			sentinelHandler(domain.ErrClassifierError, http.StatusBadGateway, CodeUpstreamError),
		},
	}
}

// Handle writes the mapped response for err. Unknown errors become 500 with
// no internal detail.
func (m *ErrorMapper) Handle(w http.ResponseWriter, err error) {
	m.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range m.handlers {
		if h(w, err, msg) {
			return
		}
	}
	m.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrServiceTimeout,
		domain.ErrServiceError,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
		domain.ErrClassifierError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
