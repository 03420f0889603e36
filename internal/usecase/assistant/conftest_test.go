package assistant

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/db"
	"github.com/eshop-cloud/recall/internal/domain"
)

type mockChat struct {
	reply  string
	err    error
	calls  int
	prompt string
}

func (m *mockChat) Complete(_ context.Context, _, userPrompt string) (string, error) {
	m.calls++
	m.prompt = userPrompt
	return m.reply, m.err
}

type mockRecommender struct {
	recs []domain.Recommendation
	err  error
}

func (m *mockRecommender) Recommend(_ context.Context, _, _ string, _ int) ([]domain.Recommendation, error) {
	return m.recs, m.err
}

type mockCatalog struct {
	stats domain.CatalogStats
	err   error
}

func (m *mockCatalog) Stats(_ context.Context) (domain.CatalogStats, error) {
	return m.stats, m.err
}

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func newTestService(chat *mockChat, rec *mockRecommender, cat *mockCatalog, cache ResponseCache) *Service {
	return New(chat, rec, cat, cache, zap.NewNop())
}
