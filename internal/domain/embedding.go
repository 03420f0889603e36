package domain

import "context"

// EmbeddingResult carries a vector plus provider token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text into a fixed-dimension embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// ChatCompleter answers a free-form prompt pair via an LLM.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// KeywordExtractor derives lowercase, deduplicated search keywords from
// a user query.
type KeywordExtractor interface {
	Extract(ctx context.Context, query string) ([]string, error)
}

// HealthChecker is implemented by providers that can verify upstream
// availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
