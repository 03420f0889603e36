package assistant

import (
	"context"
	"time"

	"github.com/eshop-cloud/recall/internal/domain"
)

// Recommender supplies the product candidates the assistant grounds its
// answers on.
type Recommender interface {
	Recommend(ctx context.Context, query, excludeID string, limit int) ([]domain.Recommendation, error)
}

// Catalog exposes the aggregate view used for the no-match fallback.
type Catalog interface {
	Stats(ctx context.Context) (domain.CatalogStats, error)
}

// ResponseCache memoizes full answers keyed by normalized question.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
