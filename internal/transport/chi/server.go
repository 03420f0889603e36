package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chiv5 "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
	healthuc "github.com/eshop-cloud/recall/internal/usecase/health"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeProductNotFound        = "product_not_found"
	codeRebuildInProgress      = "rebuild_in_progress"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeChatProviderError      = "chat_provider_error"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Recommender serves ranked product recommendations.
type Recommender interface {
	Recommend(ctx context.Context, query, excludeID string, limit int) ([]domain.Recommendation, error)
}

// Assistant answers free-form shopping questions.
type Assistant interface {
	Ask(ctx context.Context, question string) (domain.AssistantAnswer, error)
}

// IndexAdmin exposes index maintenance operations.
type IndexAdmin interface {
	Stats() domain.IndexStats
	TriggerRebuild(force bool) bool
	UpsertProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	RemoveProduct(ctx context.Context, id string) error
}

// CatalogReader supplies catalog aggregates for the stats endpoint.
type CatalogReader interface {
	Stats(ctx context.Context) (domain.CatalogStats, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers for the public API.
type Server struct {
	rec       Recommender
	assistant Assistant
	admin     IndexAdmin
	catalog   CatalogReader
	health    HealthChecker
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	rec Recommender,
	assistant Assistant,
	admin IndexAdmin,
	catalog CatalogReader,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		rec:       rec,
		assistant: assistant,
		admin:     admin,
		catalog:   catalog,
		health:    health,
		logger:    logger,
	}
}

// Mount registers all routes on the given router. Middleware is applied
// by the caller.
func (s *Server) Mount(r chiv5.Router) {
	r.Route("/api/v1", func(r chiv5.Router) {
		r.Post("/recommend", s.handleRecommend)
		r.Post("/assistant/ask", s.handleAssistantAsk)
		r.Get("/index/stats", s.handleIndexStats)
		r.Post("/index/rebuild", s.handleIndexRebuild)
		r.Put("/products/{id}", s.handleUpsertProduct)
		r.Delete("/products/{id}", s.handleDeleteProduct)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrProductNotFound,
		domain.ErrIndexNotReady,
		domain.ErrDimensionMismatch,
		domain.ErrEmptyQuery,
		domain.ErrEmbeddingProviderError,
		domain.ErrChatProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, msg)
	case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrDimensionMismatch):
		writeError(w, http.StatusBadRequest, codeValidationFailed, msg)
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, codeEmbeddingProviderError, msg)
	case errors.Is(err, domain.ErrChatProviderError):
		writeError(w, http.StatusBadGateway, codeChatProviderError, msg)
	case errors.Is(err, domain.ErrIndexNotReady):
		writeError(w, http.StatusServiceUnavailable, codeInternalError, msg)
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
