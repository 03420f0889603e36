package recommend

import (
	"context"

	"github.com/eshop-cloud/recall/internal/domain"
)

// Catalog reads product records.
type Catalog interface {
	All(ctx context.Context) ([]domain.Product, error)
	Popular(ctx context.Context, limit int) ([]domain.Product, error)
}

// VectorSearcher runs semantic search over the product index.
type VectorSearcher interface {
	Ready() bool
	Search(ctx context.Context, query string, topK int) []domain.ScoredProduct
}

// KeywordExtractor derives search keywords from a query.
type KeywordExtractor interface {
	Extract(ctx context.Context, query string) ([]string, error)
}
