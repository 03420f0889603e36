package indexer

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
	"github.com/eshop-cloud/recall/internal/index"
)

// Service keeps the catalog and the vector index in step: full rebuilds
// from a catalog snapshot, incremental mutations on product writes.
type Service struct {
	catalog Catalog
	idx     VectorIndex
	logger  *zap.Logger

	rebuilding atomic.Bool
}

func New(catalog Catalog, idx VectorIndex, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, idx: idx, logger: logger}
}

// Rebuild loads the full catalog and rebuilds the index from it. Blocks
// until the build finishes; callers wanting fire-and-forget use
// TriggerRebuild.
func (s *Service) Rebuild(ctx context.Context, force bool) (index.BuildResult, error) {
	products, err := s.catalog.All(ctx)
	if err != nil {
		return index.BuildResult{}, fmt.Errorf("load catalog: %w", err)
	}
	return s.idx.Build(ctx, products, force)
}

// TriggerRebuild starts a rebuild in the background. Returns false when
// a triggered rebuild is already in flight. The build runs detached from
// the caller's request context.
func (s *Service) TriggerRebuild(force bool) bool {
	if !s.rebuilding.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer s.rebuilding.Store(false)
		res, err := s.Rebuild(context.Background(), force)
		if err != nil {
			s.logger.Error("Background index rebuild failed", zap.Error(err))
			return
		}
		s.logger.Info("Background index rebuild finished",
			zap.Int("succeeded", res.Succeeded),
			zap.Int("failed", res.Failed),
			zap.Bool("from_cache", res.FromCache),
		)
	}()
	return true
}

// UpsertProduct writes the product to the catalog and refreshes its index
// entry. The catalog is the source of truth: an embedding failure leaves
// the index entry stale and is repaired by the next rebuild, the write
// itself still succeeds.
func (s *Service) UpsertProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	stored, err := s.catalog.Upsert(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("upsert product: %w", err)
	}

	if err := s.idx.AddOrUpdate(ctx, stored); err != nil {
		s.logger.Warn("Index refresh failed after product upsert",
			zap.String("product_id", stored.ID), zap.Error(err))
	}
	return stored, nil
}

// RemoveProduct deletes the product from the catalog and drops its index
// entry. Both sides treat a missing product as a no-op.
func (s *Service) RemoveProduct(ctx context.Context, id string) error {
	if err := s.catalog.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if err := s.idx.Remove(ctx, id); err != nil {
		s.logger.Warn("Index removal failed after product delete",
			zap.String("product_id", id), zap.Error(err))
	}
	return nil
}

// Stats reports current index state.
func (s *Service) Stats() domain.IndexStats { return s.idx.Stats() }

// Ready reports whether the index can serve vector searches.
func (s *Service) Ready() bool { return s.idx.Ready() }
