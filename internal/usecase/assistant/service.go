package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
)

// DefaultResponseTTL bounds how long a generated answer is served from
// cache before the LLM is consulted again.
const DefaultResponseTTL = 10 * time.Minute

// contextProducts caps how many product cards are pushed into the prompt.
const contextProducts = 3

const cacheKeyPrefix = "recall:assistant_cache:"

const systemPrompt = `You are a shopping assistant for an electronics store.

Rules:
- Only mention products listed in the AVAILABLE PRODUCTS section, by their exact name.
- Present them in the order given.
- Include price and rating for each product you mention.
- Be helpful and honest; never invent products or specifications.
- Close with a short follow-up question.

Keep the answer under 200 words.`

// Service answers free-form shopping questions, grounding the LLM on
// products picked by the recommendation pipeline.
type Service struct {
	chat    domain.ChatCompleter
	rec     Recommender
	catalog Catalog
	cache   ResponseCache
	ttl     time.Duration
	logger  *zap.Logger
}

func New(chat domain.ChatCompleter, rec Recommender, catalog Catalog, cache ResponseCache, logger *zap.Logger) *Service {
	return &Service{
		chat:    chat,
		rec:     rec,
		catalog: catalog,
		cache:   cache,
		ttl:     DefaultResponseTTL,
		logger:  logger,
	}
}

// Ask produces a structured answer for a customer question. LLM failures
// degrade to a canned reply instead of failing the request; only catalog
// access errors propagate.
func (s *Service) Ask(ctx context.Context, question string) (domain.AssistantAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.AssistantAnswer{}, domain.ErrEmptyQuery
	}

	key := cacheKey(question)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	recs, err := s.rec.Recommend(ctx, question, "", 0)
	if err != nil {
		return domain.AssistantAnswer{}, fmt.Errorf("recommend products: %w", err)
	}

	answer := domain.AssistantAnswer{
		MessageID: uuid.NewString(),
		Products:  recs,
		Query:     question,
		CreatedAt: time.Now().UTC(),
	}

	if len(recs) == 0 {
		answer.Text = s.noMatchReply(ctx, question)
		return answer, nil
	}

	text, err := s.chat.Complete(ctx, systemPrompt, buildUserPrompt(question, recs))
	if err != nil {
		s.logger.Warn("assistant completion failed, serving degraded reply", zap.Error(err))
		answer.Text = "I am having trouble answering right now. " +
			"Here are some products that may match what you are looking for."
		return answer, nil
	}
	answer.Text = text

	s.toCache(ctx, key, answer)
	return answer, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (domain.AssistantAnswer, bool) {
	if s.cache == nil {
		return domain.AssistantAnswer{}, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return domain.AssistantAnswer{}, false
	}
	var answer domain.AssistantAnswer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return domain.AssistantAnswer{}, false
	}
	return answer, true
}

func (s *Service) toCache(ctx context.Context, key string, answer domain.AssistantAnswer) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(answer)
	if err != nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn("assistant cache write failed", zap.Error(err))
	}
}

// noMatchReply lists the store's top categories so the customer can
// reformulate. No LLM call is made on this path.
func (s *Service) noMatchReply(ctx context.Context, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I could not find products matching %q.", question)

	stats, err := s.catalog.Stats(ctx)
	if err == nil && len(stats.TopCategories) > 0 {
		b.WriteString(" Available categories: ")
		b.WriteString(strings.Join(stats.TopCategories, ", "))
		b.WriteString(".")
	}

	b.WriteString(" Try broader terms, or ask me for recommendations in a category.")
	return b.String()
}

func buildUserPrompt(question string, recs []domain.Recommendation) string {
	var b strings.Builder
	b.WriteString("## AVAILABLE PRODUCTS ##\n\n")
	for i, r := range recs {
		if i == contextProducts {
			break
		}
		p := r.Product
		fmt.Fprintf(&b, "Product %d: %s (%s)\n", i+1, p.Name, p.Brand)
		fmt.Fprintf(&b, "  Category: %s\n", p.Category)
		fmt.Fprintf(&b, "  Price: %.2f\n", p.Price)
		fmt.Fprintf(&b, "  Rating: %.1f/5 (%d reviews)\n", p.Rating, p.ReviewCount)
		fmt.Fprintf(&b, "  In stock: %d\n\n", p.StockCount)
	}
	b.WriteString("## CUSTOMER QUESTION ##\n\n")
	fmt.Fprintf(&b, "%q\n", question)
	return b.String()
}

func cacheKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(question)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
