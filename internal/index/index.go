// Package index owns the in-memory vector index over product
// embeddings: its build/rebuild protocol, incremental mutation,
// similarity search and snapshot persistence.
package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
	"github.com/eshop-cloud/recall/internal/metrics"
)

// Embedder vectorizes text (consumer interface, ISP).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Config holds index tunables.
type Config struct {
	// BuildDelay paces embedding calls during a full build. This is
	// provider courtesy, not a retry policy.
	BuildDelay time.Duration
	// MinSimilarity filters search hits below the relevance floor.
	MinSimilarity float64
}

// Index maps product IDs to their embedding records.
//
// Mutations (Build, AddOrUpdate, Remove) serialize on buildMu; the
// entry map itself is guarded by mu so searches read a consistent
// snapshot. A full build embeds outside mu and swaps the map whole.
type Index struct {
	embedder Embedder
	cache    *FileCache
	cfg      Config
	logger   *zap.Logger

	buildMu sync.Mutex

	mu      sync.RWMutex
	entries map[string]domain.ProductVector
	ready   bool
}

// New creates an empty, not-ready index.
func New(embedder Embedder, cache *FileCache, cfg Config, logger *zap.Logger) *Index {
	if cfg.BuildDelay <= 0 {
		cfg.BuildDelay = 150 * time.Millisecond
	}
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = 0.30
	}
	return &Index{
		embedder: embedder,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		entries:  make(map[string]domain.ProductVector),
	}
}

// Ready reports whether a build pass has completed with at least one entry.
func (ix *Index) Ready() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.ready
}

// BuildResult summarizes one build pass.
type BuildResult struct {
	Succeeded int
	Failed    int
	FromCache bool
}

// Build populates the index from a catalog snapshot.
//
// Unless forced, a cached snapshot whose ID set covers the catalog is
// adopted without any embedding calls (the warm-start path). Otherwise
// every product is embedded with a pacing delay between calls; a
// failed embedding skips that product and the pass continues. The new
// map replaces the old one atomically, and the index is ready even
// after a partial pass. Zero successes leave the previous state
// untouched.
//
// The context is checked between products, so a long rebuild can be
// cancelled cleanly.
func (ix *Index) Build(ctx context.Context, products []domain.Product, force bool) (BuildResult, error) {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	start := time.Now()
	ix.logger.Info("Building vector index", zap.Int("products", len(products)), zap.Bool("force", force))

	if !force && ix.cache != nil {
		if cached, ok := ix.cache.Load(); ok && coversCatalog(cached, products) {
			ix.adopt(toMap(cached))
			ix.logger.Info("Vector index adopted from cache", zap.Int("entries", len(cached)))
			return BuildResult{Succeeded: len(cached), FromCache: true}, nil
		}
		if ix.cache.Exists() {
			ix.logger.Info("Embedding cache incomplete, rebuilding")
		}
	}

	newEntries := make(map[string]domain.ProductVector, len(products))
	var res BuildResult

	for i, p := range products {
		if err := ctx.Err(); err != nil {
			ix.logger.Warn("Index build cancelled",
				zap.Int("processed", i), zap.Int("total", len(products)))
			return res, fmt.Errorf("index build cancelled: %w", err)
		}

		text := BuildSearchableText(p)
		emb, err := ix.embedder.Embed(ctx, text)
		if err != nil || len(emb.Embedding) == 0 {
			ix.logger.Warn("Embedding failed during build",
				zap.String("product_id", p.ID), zap.Error(err))
			res.Failed++
			metrics.IndexBuildProductsTotal.WithLabelValues("failed").Inc()
		} else {
			newEntries[p.ID] = domain.ProductVector{
				ProductID:      p.ID,
				ProductName:    p.Name,
				Embedding:      emb.Embedding,
				SearchableText: text,
				CreatedAt:      time.Now().UTC(),
			}
			res.Succeeded++
			metrics.IndexBuildProductsTotal.WithLabelValues("success").Inc()
		}

		if (i+1)%10 == 0 {
			ix.logger.Info("Index build progress",
				zap.Int("processed", i+1), zap.Int("total", len(products)))
		}

		if i < len(products)-1 {
			select {
			case <-ctx.Done():
				return res, fmt.Errorf("index build cancelled: %w", ctx.Err())
			case <-time.After(ix.cfg.BuildDelay):
			}
		}
	}

	if res.Succeeded == 0 {
		if len(products) == 0 {
			ix.logger.Warn("Index build over empty catalog, index stays not ready")
			return res, nil
		}
		return res, fmt.Errorf("index build produced no entries (%d failures): %w",
			res.Failed, domain.ErrEmbeddingProviderError)
	}

	ix.adopt(newEntries)
	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	ix.logger.Info("Vector index built",
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(start)))

	ix.persist()
	return res, nil
}

// AddOrUpdate re-embeds one product and upserts its entry. A provider
// failure leaves the existing entry (if any) unchanged.
func (ix *Index) AddOrUpdate(ctx context.Context, p domain.Product) error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	text := BuildSearchableText(p)
	emb, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed product %s: %w", p.ID, err)
	}
	if len(emb.Embedding) == 0 {
		return fmt.Errorf("embed product %s: %w", p.ID, domain.ErrEmbeddingProviderError)
	}

	if dim := ix.dimension(); dim > 0 && len(emb.Embedding) != dim {
		return fmt.Errorf("product %s embedding has dimension %d, index has %d: %w",
			p.ID, len(emb.Embedding), dim, domain.ErrDimensionMismatch)
	}

	ix.mu.Lock()
	ix.entries[p.ID] = domain.ProductVector{
		ProductID:      p.ID,
		ProductName:    p.Name,
		Embedding:      emb.Embedding,
		SearchableText: text,
		CreatedAt:      time.Now().UTC(),
	}
	metrics.IndexSize.Set(float64(len(ix.entries)))
	ix.mu.Unlock()

	ix.logger.Info("Product indexed", zap.String("product_id", p.ID))
	ix.persist()
	return nil
}

// Remove deletes a product's entry. Removing a missing ID is a no-op.
func (ix *Index) Remove(ctx context.Context, productID string) error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	ix.mu.Lock()
	_, existed := ix.entries[productID]
	delete(ix.entries, productID)
	metrics.IndexSize.Set(float64(len(ix.entries)))
	ix.mu.Unlock()

	if !existed {
		return nil
	}

	ix.logger.Info("Product removed from index", zap.String("product_id", productID))
	ix.persist()
	return nil
}

// Search embeds the query and ranks all entries by cosine similarity.
// An unready index, a blank query or a failed query embedding yield an
// empty result, never an error -- callers fall back to keyword search.
func (ix *Index) Search(ctx context.Context, query string, topK int) []domain.ScoredProduct {
	if !ix.Ready() {
		ix.logger.Warn("Vector search skipped, index not ready")
		return nil
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}

	emb, err := ix.embedder.Embed(ctx, query)
	if err != nil || len(emb.Embedding) == 0 {
		ix.logger.Warn("Query embedding failed", zap.Error(err))
		return nil
	}

	ix.mu.RLock()
	results := make([]domain.ScoredProduct, 0, len(ix.entries))
	for _, pv := range ix.entries {
		sim := CosineSimilarity(emb.Embedding, pv.Embedding)
		if sim < ix.cfg.MinSimilarity {
			continue
		}
		results = append(results, domain.ScoredProduct{
			ProductID:      pv.ProductID,
			ProductName:    pv.ProductName,
			SemanticScore:  sim,
			SearchableText: pv.SearchableText,
		})
	}
	ix.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SemanticScore > results[j].SemanticScore
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	if len(results) > 0 {
		ix.logger.Debug("Vector search",
			zap.String("query", query),
			zap.String("best_match", results[0].ProductName),
			zap.Float64("best_score", results[0].SemanticScore),
			zap.Int("results", len(results)))
	}
	return results
}

// Stats returns an observability snapshot.
func (ix *Index) Stats() domain.IndexStats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	dim := 0
	for _, pv := range ix.entries {
		dim = len(pv.Embedding)
		break
	}
	return domain.IndexStats{
		Ready:              ix.ready,
		TotalProducts:      len(ix.entries),
		EmbeddingDimension: dim,
		CacheExists:        ix.cache != nil && ix.cache.Exists(),
	}
}

// Stale returns the IDs of entries whose stored searchable text no
// longer matches the current catalog row. Diagnostics only.
func (ix *Index) Stale(products []domain.Product) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var stale []string
	for _, p := range products {
		if pv, ok := ix.entries[p.ID]; ok && pv.SearchableText != BuildSearchableText(p) {
			stale = append(stale, p.ID)
		}
	}
	return stale
}

// adopt swaps in a new entry map and marks the index ready.
func (ix *Index) adopt(entries map[string]domain.ProductVector) {
	ix.mu.Lock()
	ix.entries = entries
	ix.ready = len(entries) > 0
	metrics.IndexSize.Set(float64(len(entries)))
	if ix.ready {
		metrics.IndexReady.Set(1)
	} else {
		metrics.IndexReady.Set(0)
	}
	ix.mu.Unlock()
}

// persist snapshots the current entries to the file cache. Cache
// failures are logged, not propagated: the in-memory index stays
// authoritative.
func (ix *Index) persist() {
	if ix.cache == nil {
		return
	}

	ix.mu.RLock()
	entries := make([]domain.ProductVector, 0, len(ix.entries))
	for _, pv := range ix.entries {
		entries = append(entries, pv)
	}
	ix.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ProductID < entries[j].ProductID })

	if err := ix.cache.Save(entries); err != nil {
		ix.logger.Error("Failed to persist embedding cache", zap.Error(err))
	}
}

// dimension reports the current embedding dimension (0 when empty).
func (ix *Index) dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, pv := range ix.entries {
		return len(pv.Embedding)
	}
	return 0
}

func toMap(entries []domain.ProductVector) map[string]domain.ProductVector {
	m := make(map[string]domain.ProductVector, len(entries))
	for _, e := range entries {
		m[e.ProductID] = e
	}
	return m
}

// coversCatalog reports whether the cached ID set is a superset of the
// catalog's ID set.
func coversCatalog(cached []domain.ProductVector, products []domain.Product) bool {
	ids := make(map[string]struct{}, len(cached))
	for _, e := range cached {
		ids[e.ProductID] = struct{}{}
	}
	for _, p := range products {
		if _, ok := ids[p.ID]; !ok {
			return false
		}
	}
	return true
}
