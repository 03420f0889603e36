package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiv5 "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/config"
	dbRedis "github.com/eshop-cloud/recall/internal/db/redis"
	"github.com/eshop-cloud/recall/internal/domain"
	"github.com/eshop-cloud/recall/internal/index"
	logpkg "github.com/eshop-cloud/recall/internal/logger"
	"github.com/eshop-cloud/recall/internal/metrics"
	catalogrepo "github.com/eshop-cloud/recall/internal/repository/catalog"
	"github.com/eshop-cloud/recall/internal/repository/embcache"
	"github.com/eshop-cloud/recall/internal/repository/kwcache"
	chiTransport "github.com/eshop-cloud/recall/internal/transport/chi"
	openaiProv "github.com/eshop-cloud/recall/internal/transport/openai"
	assistantuc "github.com/eshop-cloud/recall/internal/usecase/assistant"
	healthuc "github.com/eshop-cloud/recall/internal/usecase/health"
	indexeruc "github.com/eshop-cloud/recall/internal/usecase/indexer"
	keywordsuc "github.com/eshop-cloud/recall/internal/usecase/keywords"
	recommenduc "github.com/eshop-cloud/recall/internal/usecase/recommend"
	"github.com/eshop-cloud/recall/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recall API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cache_addrs", cfg.Database.Addrs),
		zap.String("catalog_path", cfg.Catalog.Path),
	)

	// Key-value cache store (embeddings, keywords, assistant replies)
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Connected to cache store")

	// Product catalog (source of truth)
	catalog, err := catalogrepo.NewStore(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer catalog.Close()

	if cfg.Catalog.SeedFile != "" {
		if err := catalog.SeedFromFile(ctx, cfg.Catalog.SeedFile, logger); err != nil {
			logger.Warn("Catalog seeding failed", zap.Error(err))
		}
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIndexMetrics()

	// OpenAI-compatible providers
	provCfg := &openaiProv.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		ChatModel:  cfg.Embedding.ChatModel,
		Logger:     logger,
	}
	baseEmbedder := openaiProv.NewEmbedder(provCfg)
	chat := openaiProv.NewChat(provCfg)

	// Embedder chain: OpenAI -> KV-cached
	var embedder domain.Embedder = embcache.New(
		baseEmbedder, store, metrics.EmbeddingCacheTotal, logger,
	)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Keyword extractor chain: LLM -> KV-cached
	var extractor domain.KeywordExtractor = keywordsuc.New(chat, cfg.Scoring.MaxKeywords, logger)
	extractor = kwcache.New(extractor, store, kwcache.DefaultTTL, logger)

	// Vector index with disk snapshot
	fileCache, err := index.NewFileCache(cfg.Index.CachePath, logger)
	if err != nil {
		logger.Fatal("Failed to prepare index cache", zap.Error(err))
	}
	idx := index.New(embedder, fileCache, index.Config{
		BuildDelay:    time.Duration(cfg.Index.BuildDelayMs) * time.Millisecond,
		MinSimilarity: cfg.Index.MinSimilarity,
	}, logger)

	// Use case services
	scorer := recommenduc.NewScorer(recommenduc.Weights{
		Semantic:          cfg.Scoring.SemanticWeight,
		Keyword:           cfg.Scoring.KeywordWeight,
		Rating:            cfg.Scoring.RatingWeight,
		SemanticThreshold: cfg.Scoring.SemanticThreshold,
		KeywordThreshold:  cfg.Scoring.KeywordThreshold,
	})
	recSvc := recommenduc.New(catalog, idx, extractor, scorer, recommenduc.Config{
		Limit:         cfg.Scoring.Limit,
		SearchTopK:    cfg.Index.SearchTopK,
		FallbackCount: cfg.Scoring.FallbackCount,
	}, logger)
	assistantSvc := assistantuc.New(chat, recSvc, catalog, store, logger)
	indexerSvc := indexeruc.New(catalog, idx, logger)
	healthSvc := healthuc.New(store, catalog, baseEmbedder, idx)

	// Initial index build in the background so startup is not gated on
	// the embedding provider.
	go func() {
		res, err := indexerSvc.Rebuild(ctx, false)
		if err != nil {
			logger.Error("Initial index build failed", zap.Error(err))
			return
		}
		logger.Info("Initial index build finished",
			zap.Int("succeeded", res.Succeeded),
			zap.Int("failed", res.Failed),
			zap.Bool("from_cache", res.FromCache),
		)
	}()

	// HTTP server
	server := chiTransport.NewServer(recSvc, assistantSvc, indexerSvc, catalog, healthSvc, logger)

	r := chiv5.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
