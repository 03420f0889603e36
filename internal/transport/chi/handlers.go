package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	chiv5 "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
	healthuc "github.com/eshop-cloud/recall/internal/usecase/health"
)

type productDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand,omitempty"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	StockCount  int     `json:"stock_count"`
}

type recommendationDTO struct {
	Product       productDTO `json:"product"`
	SemanticScore float64    `json:"semantic_score"`
	KeywordScore  float64    `json:"keyword_score"`
	HybridScore   float64    `json:"hybrid_score"`
}

func productToDTO(p domain.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		StockCount:  p.StockCount,
	}
}

func recommendationsToDTO(recs []domain.Recommendation) []recommendationDTO {
	items := make([]recommendationDTO, len(recs))
	for i, r := range recs {
		items[i] = recommendationDTO{
			Product:       productToDTO(r.Product),
			SemanticScore: r.SemanticScore,
			KeywordScore:  r.KeywordScore,
			HybridScore:   r.HybridScore,
		}
	}
	return items
}

type recommendRequest struct {
	Query     string `json:"query"`
	ExcludeID string `json:"exclude_id"`
	Limit     int    `json:"limit"`
}

type recommendResponse struct {
	Items []recommendationDTO `json:"items"`
	Total int                 `json:"total"`
}

// handleRecommend handles POST /api/v1/recommend.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	recs, err := s.rec.Recommend(r.Context(), req.Query, req.ExcludeID, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := recommendationsToDTO(recs)
	writeJSON(w, http.StatusOK, recommendResponse{Items: items, Total: len(items)})
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	MessageID string              `json:"message_id"`
	Text      string              `json:"text"`
	Products  []recommendationDTO `json:"products"`
	Query     string              `json:"query"`
	CreatedAt time.Time           `json:"created_at"`
}

// handleAssistantAsk handles POST /api/v1/assistant/ask.
func (s *Server) handleAssistantAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	answer, err := s.assistant.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		MessageID: answer.MessageID,
		Text:      answer.Text,
		Products:  recommendationsToDTO(answer.Products),
		Query:     answer.Query,
		CreatedAt: answer.CreatedAt,
	})
}

type catalogStatsDTO struct {
	TotalProducts   int      `json:"total_products"`
	TotalCategories int      `json:"total_categories"`
	AvgRating       float64  `json:"avg_rating"`
	AvgPrice        float64  `json:"avg_price"`
	TopCategories   []string `json:"top_categories"`
}

type statsResponse struct {
	Index   domain.IndexStats `json:"index"`
	Catalog catalogStatsDTO   `json:"catalog"`
}

// handleIndexStats handles GET /api/v1/index/stats.
func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	catStats, err := s.catalog.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Index: s.admin.Stats(),
		Catalog: catalogStatsDTO{
			TotalProducts:   catStats.TotalProducts,
			TotalCategories: catStats.TotalCategories,
			AvgRating:       catStats.AvgRating,
			AvgPrice:        catStats.AvgPrice,
			TopCategories:   catStats.TopCategories,
		},
	})
}

type rebuildRequest struct {
	Force bool `json:"force"`
}

// handleIndexRebuild handles POST /api/v1/index/rebuild. The rebuild runs
// in the background; an empty body means a non-forced rebuild.
func (s *Server) handleIndexRebuild(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if !s.admin.TriggerRebuild(req.Force) {
		writeError(w, http.StatusConflict, codeRebuildInProgress, "a rebuild is already running")
		return
	}

	s.logger.Info("Index rebuild triggered", zap.Bool("force", req.Force))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "rebuilding"})
}

// handleUpsertProduct handles PUT /api/v1/products/{id}.
func (s *Server) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req productDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "product name is required")
		return
	}

	p := domain.Product{
		ID:          chiv5.URLParam(r, "id"),
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Rating:      req.Rating,
		ReviewCount: req.ReviewCount,
		StockCount:  req.StockCount,
	}

	stored, err := s.admin.UpsertProduct(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productToDTO(stored))
}

// handleDeleteProduct handles DELETE /api/v1/products/{id}.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chiv5.URLParam(r, "id")
	if err := s.admin.RemoveProduct(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status     healthuc.Status                 `json:"status"`
	Checks     map[string]healthuc.CheckResult `json:"checks"`
	IndexReady bool                            `json:"index_ready"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, healthResponse{
		Status:     report.Status,
		Checks:     report.Checks,
		IndexReady: report.IndexReady,
	})
}
