package recommend

import (
	"strings"

	"github.com/eshop-cloud/recall/internal/domain"
)

// Keyword match points per field. First match wins per keyword, so one
// keyword never scores in more than one field.
const (
	nameMatchPoints        = 3.0
	brandMatchPoints       = 2.0
	categoryMatchPoints    = 2.0
	descriptionMatchPoints = 1.0
)

// Weights holds the hybrid scoring weights and inclusion thresholds.
type Weights struct {
	Semantic          float64
	Keyword           float64
	Rating            float64
	SemanticThreshold float64
	KeywordThreshold  float64
}

// DefaultWeights returns the production defaults: 70% semantic, 25%
// keyword, up to 5% rating bonus.
func DefaultWeights() Weights {
	return Weights{
		Semantic:          0.70,
		Keyword:           0.25,
		Rating:            0.05,
		SemanticThreshold: 0.25,
		KeywordThreshold:  0.30,
	}
}

// Scorer combines semantic similarity, keyword match strength and a
// rating prior into one ranking score.
type Scorer struct {
	w Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// KeywordScore returns the normalized [0,1] keyword match strength for
// a product. No keywords means no signal, scored 0.
func (s *Scorer) KeywordScore(p domain.Product, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	name := strings.ToLower(p.Name)
	brand := strings.ToLower(p.Brand)
	category := strings.ToLower(p.Category)
	description := strings.ToLower(p.Description)

	var points float64
	for _, kw := range keywords {
		switch {
		case strings.Contains(name, kw):
			points += nameMatchPoints
		case strings.Contains(brand, kw):
			points += brandMatchPoints
		case strings.Contains(category, kw):
			points += categoryMatchPoints
		case strings.Contains(description, kw):
			points += descriptionMatchPoints
		}
	}

	return points / (nameMatchPoints * float64(len(keywords)))
}

// RatingBonus contributes at most the rating weight (5% by default) --
// a tie-breaker, not a primary driver.
func (s *Scorer) RatingBonus(rating float64) float64 {
	return rating / 5.0 * s.w.Rating
}

// Hybrid computes the final ranking score.
func (s *Scorer) Hybrid(semantic, keyword, rating float64) float64 {
	return semantic*s.w.Semantic + keyword*s.w.Keyword + s.RatingBonus(rating)
}

// Qualifies applies the inclusion rule: either signal alone can admit
// a candidate (logical OR), so an exact brand match surfaces even with
// mediocre embedding similarity and vice versa.
func (s *Scorer) Qualifies(semantic, keyword float64) bool {
	return semantic > s.w.SemanticThreshold || keyword > s.w.KeywordThreshold
}
