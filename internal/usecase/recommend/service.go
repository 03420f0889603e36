// Package recommend orchestrates vector search, keyword extraction and
// hybrid scoring into ranked product recommendations.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
	"github.com/eshop-cloud/recall/internal/metrics"
)

// Config holds service limits.
type Config struct {
	// Limit is the default number of recommendations returned.
	Limit int
	// SearchTopK is how many vector hits feed the hybrid pass.
	SearchTopK int
	// FallbackCount is the size of the popularity fallback.
	FallbackCount int
}

// Service produces ranked product recommendations for a query.
type Service struct {
	catalog Catalog
	idx     VectorSearcher
	kw      KeywordExtractor
	scorer  *Scorer
	cfg     Config
	logger  *zap.Logger
}

// New creates a recommendation service.
func New(catalog Catalog, idx VectorSearcher, kw KeywordExtractor, scorer *Scorer, cfg Config, logger *zap.Logger) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = 6
	}
	if cfg.SearchTopK <= 0 {
		cfg.SearchTopK = 20
	}
	if cfg.FallbackCount <= 0 {
		cfg.FallbackCount = 3
	}
	return &Service{catalog: catalog, idx: idx, kw: kw, scorer: scorer, cfg: cfg, logger: logger}
}

// Recommend returns up to limit ranked products for the query,
// excluding excludeID when non-empty. Provider failures degrade
// through keyword-only scoring down to the popularity fallback; as
// long as any products exist, the result is never empty.
func (s *Service) Recommend(ctx context.Context, query, excludeID string, limit int) ([]domain.Recommendation, error) {
	if limit <= 0 || limit > s.cfg.Limit {
		limit = s.cfg.Limit
	}

	all, err := s.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	keywords, err := s.kw.Extract(ctx, query)
	if err != nil {
		s.logger.Warn("Keyword extraction failed, scoring without keywords", zap.Error(err))
		keywords = nil
	}

	var semanticScores map[string]float64
	mode := "keyword"
	if s.idx.Ready() {
		mode = "hybrid"
		hits := s.idx.Search(ctx, query, s.cfg.SearchTopK)
		semanticScores = make(map[string]float64, len(hits))
		for _, h := range hits {
			semanticScores[h.ProductID] = h.SemanticScore
		}
	} else {
		s.logger.Warn("Vector index not ready, falling back to keyword-only scoring")
	}

	var scored []domain.Recommendation
	for _, p := range all {
		if excludeID != "" && p.ID == excludeID {
			continue
		}

		semantic := semanticScores[p.ID]
		keyword := s.scorer.KeywordScore(p, keywords)
		if !s.scorer.Qualifies(semantic, keyword) {
			continue
		}

		scored = append(scored, domain.Recommendation{
			Product:       p,
			SemanticScore: semantic,
			KeywordScore:  keyword,
			HybridScore:   s.scorer.Hybrid(semantic, keyword, p.Rating),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].HybridScore > scored[j].HybridScore
	})

	if len(scored) == 0 {
		return s.popularFallback(ctx, query)
	}

	if len(scored) > limit {
		scored = scored[:limit]
	}

	metrics.RecommendRequestsTotal.WithLabelValues(mode).Inc()
	s.logger.Info("Recommendations produced",
		zap.String("mode", mode),
		zap.String("query", query),
		zap.Int("results", len(scored)))
	return scored, nil
}

// popularFallback is the always-available default: highest rating,
// then highest review count.
func (s *Service) popularFallback(ctx context.Context, query string) ([]domain.Recommendation, error) {
	top, err := s.catalog.Popular(ctx, s.cfg.FallbackCount)
	if err != nil {
		return nil, fmt.Errorf("load popular products: %w", err)
	}

	out := make([]domain.Recommendation, 0, len(top))
	for _, p := range top {
		out = append(out, domain.Recommendation{Product: p})
	}

	metrics.RecommendRequestsTotal.WithLabelValues("popular").Inc()
	s.logger.Info("No qualifying candidates, using popularity fallback",
		zap.String("query", query), zap.Int("results", len(out)))
	return out, nil
}
