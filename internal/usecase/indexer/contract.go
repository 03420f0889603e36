package indexer

import (
	"context"

	"github.com/eshop-cloud/recall/internal/domain"
	"github.com/eshop-cloud/recall/internal/index"
)

// Catalog is the product source of truth.
type Catalog interface {
	All(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// VectorIndex mutates and inspects the in-memory embedding index.
type VectorIndex interface {
	Build(ctx context.Context, products []domain.Product, force bool) (index.BuildResult, error)
	AddOrUpdate(ctx context.Context, p domain.Product) error
	Remove(ctx context.Context, productID string) error
	Stats() domain.IndexStats
	Ready() bool
}
