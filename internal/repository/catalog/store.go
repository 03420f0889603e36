// Package catalog is the sqlite-backed product store.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"github.com/eshop-cloud/recall/internal/domain"
)

// Store is a persistent product catalog backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (and if necessary initializes) a catalog at the given path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			brand        TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			price        REAL NOT NULL,
			rating       REAL NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			stock_count  INTEGER NOT NULL DEFAULT 0,
			updated_at   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const productColumns = "id, name, brand, category, description, price, rating, review_count, stock_count"

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description,
		&p.Price, &p.Rating, &p.ReviewCount, &p.StockCount)
	return p, err
}

// All returns every product in the catalog.
func (s *Store) All(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one product by ID.
func (s *Store) Get(ctx context.Context, id string) (domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Upsert inserts or replaces a product. A missing ID is generated.
func (s *Store) Upsert(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			category = excluded.category,
			description = excluded.description,
			price = excluded.price,
			rating = excluded.rating,
			review_count = excluded.review_count,
			stock_count = excluded.stock_count,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Brand, p.Category, p.Description,
		p.Price, p.Rating, p.ReviewCount, p.StockCount,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("upsert product: %w", err)
	}
	return p, nil
}

// Delete removes a product. Deleting a missing ID is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Popular returns the highest rated products, ties broken by review count.
func (s *Store) Popular(ctx context.Context, limit int) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY rating DESC, review_count DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("query popular products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of products.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Stats computes catalog-wide aggregates for observability.
func (s *Store) Stats(ctx context.Context) (domain.CatalogStats, error) {
	var st domain.CatalogStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT CASE WHEN category <> '' THEN category END),
		       COALESCE(AVG(rating), 0),
		       COALESCE(AVG(price), 0)
		FROM products`).
		Scan(&st.TotalProducts, &st.TotalCategories, &st.AvgRating, &st.AvgPrice)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("catalog stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category FROM products
		WHERE category <> ''
		GROUP BY category ORDER BY COUNT(*) DESC LIMIT 5`)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return domain.CatalogStats{}, fmt.Errorf("scan category: %w", err)
		}
		st.TopCategories = append(st.TopCategories, c)
	}
	return st, rows.Err()
}
