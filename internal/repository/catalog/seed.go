package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
)

type seedProduct struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	StockCount  int     `json:"stock_count"`
}

// SeedFromFile imports products from a JSON file when the catalog is
// empty. Seeding a non-empty catalog is a no-op, so the import is
// idempotent across restarts.
func (s *Store) SeedFromFile(ctx context.Context, path string, logger *zap.Logger) error {
	n, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Debug("Catalog already populated, skipping seed", zap.Int("products", n))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seeds []seedProduct
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, sp := range seeds {
		if sp.Name == "" {
			continue
		}
		_, err := s.Upsert(ctx, domain.Product{
			ID:          sp.ID,
			Name:        sp.Name,
			Brand:       sp.Brand,
			Category:    sp.Category,
			Description: sp.Description,
			Price:       sp.Price,
			Rating:      sp.Rating,
			ReviewCount: sp.ReviewCount,
			StockCount:  sp.StockCount,
		})
		if err != nil {
			return fmt.Errorf("seed product %q: %w", sp.Name, err)
		}
	}

	logger.Info("Catalog seeded", zap.Int("products", len(seeds)), zap.String("file", path))
	return nil
}
