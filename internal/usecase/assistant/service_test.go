package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eshop-cloud/recall/internal/domain"
)

func sampleRecs() []domain.Recommendation {
	return []domain.Recommendation{
		{Product: domain.Product{ID: "1", Name: "Phone X", Brand: "Acme", Price: 499, Rating: 4.5}},
		{Product: domain.Product{ID: "2", Name: "Phone Z", Brand: "Zeta", Price: 899, Rating: 5.0}},
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := newTestService(&mockChat{}, &mockRecommender{}, &mockCatalog{}, nil)

	if _, err := svc.Ask(context.Background(), "   "); !errors.Is(err, domain.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestAsk_GroundsPromptOnProducts(t *testing.T) {
	chat := &mockChat{reply: "Here are two phones."}
	svc := newTestService(chat, &mockRecommender{recs: sampleRecs()}, &mockCatalog{}, nil)

	got, err := svc.Ask(context.Background(), "which phone should I buy?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Here are two phones." {
		t.Errorf("unexpected answer text: %q", got.Text)
	}
	if len(got.Products) != 2 {
		t.Errorf("expected product cards attached, got %d", len(got.Products))
	}
	if got.MessageID == "" {
		t.Error("expected a message id")
	}
	if !strings.Contains(chat.prompt, "Phone X") || !strings.Contains(chat.prompt, "Phone Z") {
		t.Errorf("prompt missing product names:\n%s", chat.prompt)
	}
	if !strings.Contains(chat.prompt, "which phone should I buy?") {
		t.Error("prompt missing the customer question")
	}
}

func TestAsk_ResponseCache(t *testing.T) {
	chat := &mockChat{reply: "cached answer"}
	cache := newMockCache()
	svc := newTestService(chat, &mockRecommender{recs: sampleRecs()}, &mockCatalog{}, cache)

	first, err := svc.Ask(context.Background(), "best phone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Ask(context.Background(), "BEST PHONE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.calls != 1 {
		t.Errorf("expected a single completion, got %d", chat.calls)
	}
	if second.MessageID != first.MessageID {
		t.Error("cached answer must be returned verbatim")
	}
}

func TestAsk_CompletionFailureDegrades(t *testing.T) {
	chat := &mockChat{err: errors.New("upstream down")}
	cache := newMockCache()
	svc := newTestService(chat, &mockRecommender{recs: sampleRecs()}, &mockCatalog{}, cache)

	got, err := svc.Ask(context.Background(), "best phone")
	if err != nil {
		t.Fatalf("completion failure must not fail the request: %v", err)
	}
	if got.Text == "" {
		t.Error("expected a degraded reply")
	}
	if len(got.Products) != 2 {
		t.Error("degraded reply must still carry product cards")
	}
	if len(cache.data) != 0 {
		t.Error("degraded replies must not be cached")
	}
}

func TestAsk_NoMatchesListsCategories(t *testing.T) {
	chat := &mockChat{}
	cat := &mockCatalog{stats: domain.CatalogStats{TopCategories: []string{"Phones", "Laptops"}}}
	svc := newTestService(chat, &mockRecommender{}, cat, nil)

	got, err := svc.Ask(context.Background(), "underwater basket weaving kit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.calls != 0 {
		t.Error("no-match path must not call the LLM")
	}
	if !strings.Contains(got.Text, "Phones") || !strings.Contains(got.Text, "Laptops") {
		t.Errorf("expected category hints in reply: %q", got.Text)
	}
}

func TestAsk_RecommenderErrorPropagates(t *testing.T) {
	rec := &mockRecommender{err: errors.New("db down")}
	svc := newTestService(&mockChat{}, rec, &mockCatalog{}, nil)

	if _, err := svc.Ask(context.Background(), "phone"); err == nil {
		t.Fatal("expected catalog failure to propagate")
	}
}
