package recommend

import (
	"context"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
)

// --- Mocks ---

type mockCatalog struct {
	products      []domain.Product
	err           error
	popularCalled bool
}

func (m *mockCatalog) All(_ context.Context) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *mockCatalog) Popular(_ context.Context, limit int) ([]domain.Product, error) {
	m.popularCalled = true
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	// Highest rating first, then review count.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Rating > out[i].Rating ||
				(out[j].Rating == out[i].Rating && out[j].ReviewCount > out[i].ReviewCount) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockSearcher struct {
	ready  bool
	hits   []domain.ScoredProduct
	called bool
}

func (m *mockSearcher) Ready() bool { return m.ready }

func (m *mockSearcher) Search(_ context.Context, _ string, _ int) []domain.ScoredProduct {
	m.called = true
	return m.hits
}

type mockExtractor struct {
	keywords []string
	err      error
}

func (m *mockExtractor) Extract(_ context.Context, _ string) ([]string, error) {
	return m.keywords, m.err
}

func newTestService(cat *mockCatalog, idx *mockSearcher, kw *mockExtractor) *Service {
	return New(cat, idx, kw, NewScorer(DefaultWeights()), Config{}, zap.NewNop())
}
