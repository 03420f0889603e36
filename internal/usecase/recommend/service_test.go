package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/eshop-cloud/recall/internal/domain"
)

func phoneCatalog() []domain.Product {
	return []domain.Product{
		{ID: "a", Name: "Phone X", Rating: 4.5},
		{ID: "b", Name: "Laptop Y", Rating: 3.0},
		{ID: "c", Name: "Phone Z", Rating: 5.0},
	}
}

func TestRecommend_KeywordOnlyFallback(t *testing.T) {
	// Index not ready: A and C qualify via keyword score, B is
	// excluded, and C outranks A on the rating bonus.
	cat := &mockCatalog{products: phoneCatalog()}
	idx := &mockSearcher{ready: false}
	kw := &mockExtractor{keywords: []string{"phone"}}
	svc := newTestService(cat, idx, kw)

	got, err := svc.Recommend(context.Background(), "phone", "", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.called {
		t.Error("vector search must be skipped when the index is not ready")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 recommendations, got %d: %+v", len(got), got)
	}
	if got[0].Product.ID != "c" || got[1].Product.ID != "a" {
		t.Errorf("expected C above A (rating bonus), got %s then %s",
			got[0].Product.ID, got[1].Product.ID)
	}
}

func TestRecommend_HybridMode(t *testing.T) {
	cat := &mockCatalog{products: phoneCatalog()}
	idx := &mockSearcher{
		ready: true,
		hits: []domain.ScoredProduct{
			{ProductID: "b", SemanticScore: 0.9},
		},
	}
	kw := &mockExtractor{keywords: []string{"phone"}}
	svc := newTestService(cat, idx, kw)

	got, err := svc.Recommend(context.Background(), "portable computer", "", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idx.called {
		t.Error("expected vector search to run")
	}
	// B qualifies on semantic alone, A and C on keywords; B's 0.63
	// hybrid beats the keyword-only 0.295/0.30.
	if len(got) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(got))
	}
	if got[0].Product.ID != "b" {
		t.Errorf("expected B ranked first on semantic signal, got %s", got[0].Product.ID)
	}
}

func TestRecommend_InclusionIsLogicalOR(t *testing.T) {
	cat := &mockCatalog{products: []domain.Product{
		{ID: "kw", Name: "Phone Case"},   // keyword only
		{ID: "sem", Name: "Unrelated"},   // semantic only
		{ID: "none", Name: "Irrelevant"}, // neither
	}}
	idx := &mockSearcher{
		ready: true,
		hits:  []domain.ScoredProduct{{ProductID: "sem", SemanticScore: 0.5}},
	}
	kw := &mockExtractor{keywords: []string{"phone"}}
	svc := newTestService(cat, idx, kw)

	got, err := svc.Recommend(context.Background(), "phone", "", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := map[string]bool{}
	for _, r := range got {
		ids[r.Product.ID] = true
	}
	if !ids["kw"] || !ids["sem"] {
		t.Errorf("expected both OR branches included, got %v", ids)
	}
	if ids["none"] {
		t.Error("candidate below both thresholds must be excluded")
	}
}

func TestRecommend_ExcludeID(t *testing.T) {
	cat := &mockCatalog{products: phoneCatalog()}
	idx := &mockSearcher{ready: false}
	kw := &mockExtractor{keywords: []string{"phone"}}
	svc := newTestService(cat, idx, kw)

	got, err := svc.Recommend(context.Background(), "phone", "c", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range got {
		if r.Product.ID == "c" {
			t.Error("excluded product leaked into recommendations")
		}
	}
}

func TestRecommend_PopularityFallback(t *testing.T) {
	cat := &mockCatalog{products: []domain.Product{
		{ID: "a", Name: "Alpha", Rating: 4.0, ReviewCount: 5},
		{ID: "b", Name: "Beta", Rating: 5.0, ReviewCount: 2},
	}}
	idx := &mockSearcher{ready: false}
	kw := &mockExtractor{keywords: []string{"nomatch"}}
	svc := newTestService(cat, idx, kw)

	got, err := svc.Recommend(context.Background(), "something else entirely", "", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cat.popularCalled {
		t.Fatal("expected popularity fallback")
	}
	if len(got) != 2 || got[0].Product.ID != "b" {
		t.Errorf("expected popular ordering b,a, got %+v", got)
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	cat := &mockCatalog{}
	svc := newTestService(cat, &mockSearcher{}, &mockExtractor{})

	got, err := svc.Recommend(context.Background(), "anything", "", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result for empty catalog, got %d", len(got))
	}
	if cat.popularCalled {
		t.Error("popularity fallback is pointless on an empty catalog")
	}
}

func TestRecommend_CatalogError(t *testing.T) {
	cat := &mockCatalog{err: errors.New("db down")}
	svc := newTestService(cat, &mockSearcher{}, &mockExtractor{})

	if _, err := svc.Recommend(context.Background(), "q", "", 6); err == nil {
		t.Fatal("expected catalog error to propagate")
	}
}

func TestRecommend_ExtractorErrorDegrades(t *testing.T) {
	cat := &mockCatalog{products: phoneCatalog()}
	idx := &mockSearcher{
		ready: true,
		hits:  []domain.ScoredProduct{{ProductID: "a", SemanticScore: 0.8}},
	}
	kw := &mockExtractor{err: errors.New("llm down")}
	svc := newTestService(cat, idx, kw)

	got, err := svc.Recommend(context.Background(), "phone", "", 6)
	if err != nil {
		t.Fatalf("extractor failure must not fail the request: %v", err)
	}
	if len(got) != 1 || got[0].Product.ID != "a" {
		t.Errorf("expected semantic-only result, got %+v", got)
	}
}

func TestRecommend_LimitApplied(t *testing.T) {
	products := make([]domain.Product, 10)
	for i := range products {
		products[i] = domain.Product{ID: string(rune('a' + i)), Name: "Phone", Rating: 4}
	}
	cat := &mockCatalog{products: products}
	kw := &mockExtractor{keywords: []string{"phone"}}
	svc := newTestService(cat, &mockSearcher{}, kw)

	got, err := svc.Recommend(context.Background(), "phone", "", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected limit 4 applied, got %d", len(got))
	}
}
