// Package kwcache memoizes keyword extraction results in a key-value
// store, since extraction calls an LLM on the request path.
package kwcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/db"
	"github.com/eshop-cloud/recall/internal/domain"
)

const cacheKeyPrefix = "recall:kw_cache:"

// DefaultTTL bounds how long extracted keywords stay memoized.
const DefaultTTL = time.Hour

// store is the consumer interface for the keyword cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExtractor caches extracted keywords per normalized query.
type CachedExtractor struct {
	inner  domain.KeywordExtractor
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a caching decorator with the given TTL (DefaultTTL when zero).
func New(inner domain.KeywordExtractor, s store, ttl time.Duration, logger *zap.Logger) *CachedExtractor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedExtractor{inner: inner, store: s, ttl: ttl, logger: logger}
}

// Extract returns memoized keywords or delegates to the inner extractor.
func (c *CachedExtractor) Extract(ctx context.Context, query string) ([]string, error) {
	key := c.cacheKey(query)

	if data, err := c.store.Get(ctx, key); err == nil {
		var kws []string
		if json.Unmarshal(data, &kws) == nil {
			return kws, nil
		}
		c.logger.Warn("Failed to parse cached keywords", zap.String("key", key))
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		c.logger.Warn("Failed to get cached keywords", zap.String("key", key), zap.Error(err))
	}

	kws, err := c.inner.Extract(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(kws); err == nil {
		if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("Failed to cache keywords", zap.String("key", key), zap.Error(err))
		}
	}

	return kws, nil
}

func (c *CachedExtractor) cacheKey(query string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}
