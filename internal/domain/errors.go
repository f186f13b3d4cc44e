package domain

import "errors"

var (
	// ErrServiceTimeout signals a dependency call that exceeded its deadline.
	ErrServiceTimeout = errors.New("service timeout")
	// ErrServiceError signals a dependency that returned a non-2xx response.
	ErrServiceError = errors.New("service error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmptyResult signals that no matching documents were found.
	// Callers treat this as a normal outcome, not a failure.
	ErrEmptyResult = errors.New("empty result")
	// ErrInvalidRequest signals a malformed or out-of-range request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrVectorDimMismatch signals an embedding whose dimension does not
	// match the configured index.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrClassifierError signals an intent classifier failure.
	ErrClassifierError = errors.New("intent classifier error")
)
