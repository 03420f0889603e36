package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound signals a missing catalog product.
	ErrProductNotFound = errors.New("product not found")
	// ErrIndexNotReady signals that the vector index has not completed a build.
	ErrIndexNotReady = errors.New("vector index not ready")
	// ErrDimensionMismatch signals mixed embedding dimensions within one index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals an LLM chat provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrEmptyQuery signals a blank or whitespace-only query.
	ErrEmptyQuery = errors.New("empty query")
)
