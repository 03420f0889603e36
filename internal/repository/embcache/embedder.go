// Package embcache caches embeddings in a key-value store so repeated
// catalog builds and common queries skip the provider entirely.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/db"
	"github.com/eshop-cloud/recall/internal/domain"
)

const cacheKeyPrefix = "recall:emb_cache:"

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedEmbedder decorates an Embedder with a persistent KV cache.
// Vectors are stored as packed little-endian float32, keyed by a
// SHA-256 of the exact input text.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New wraps inner with caching. cacheTotal may be nil; when set it must
// carry a single "result" label ("hit"/"miss").
func New(inner domain.Embedder, s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: s, cacheTotal: cacheTotal, logger: logger}
}

// Embed serves the vector from cache when present, otherwise delegates
// to the inner embedder and stores the result. Hits report zero token
// usage since no provider call happened.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	sum := sha256.Sum256([]byte(text))
	key := cacheKeyPrefix + hex.EncodeToString(sum[:])

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil && len(data) > 0:
		vec, decErr := bytesToVector(data)
		if decErr == nil {
			c.observe("hit")
			return domain.EmbeddingResult{Embedding: vec}, nil
		}
		c.logger.Warn("Discarding undecodable cached embedding",
			zap.String("key", key), zap.Error(decErr))
	case err != nil && !errors.Is(err, db.ErrKeyNotFound):
		c.logger.Warn("Embedding cache read failed",
			zap.String("key", key), zap.Error(err))
	}

	c.observe("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	// Write-through failures are logged, never surfaced: the caller
	// already has its vector.
	if err := c.store.Set(ctx, key, vectorToCacheBytes(result.Embedding)); err != nil {
		c.logger.Warn("Embedding cache write failed",
			zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

func (c *CachedEmbedder) observe(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, 0, len(v)*4)
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("embedding cache entry has odd length %d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
