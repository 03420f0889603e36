package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	chiv5 "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
	healthuc "github.com/eshop-cloud/recall/internal/usecase/health"
)

type mockRecommender struct {
	recs      []domain.Recommendation
	err       error
	query     string
	excludeID string
	limit     int
}

func (m *mockRecommender) Recommend(_ context.Context, query, excludeID string, limit int) ([]domain.Recommendation, error) {
	m.query = query
	m.excludeID = excludeID
	m.limit = limit
	return m.recs, m.err
}

type mockAssistant struct {
	answer domain.AssistantAnswer
	err    error
}

func (m *mockAssistant) Ask(_ context.Context, question string) (domain.AssistantAnswer, error) {
	if m.err != nil {
		return domain.AssistantAnswer{}, m.err
	}
	a := m.answer
	a.Query = question
	return a, nil
}

type mockAdmin struct {
	stats     domain.IndexStats
	triggered bool
	forced    bool
	inFlight  bool
	upserted  []domain.Product
	upsertErr error
	removed   []string
	removeErr error
}

func (m *mockAdmin) Stats() domain.IndexStats { return m.stats }

func (m *mockAdmin) TriggerRebuild(force bool) bool {
	if m.inFlight {
		return false
	}
	m.triggered = true
	m.forced = force
	return true
}

func (m *mockAdmin) UpsertProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	if m.upsertErr != nil {
		return domain.Product{}, m.upsertErr
	}
	m.upserted = append(m.upserted, p)
	return p, nil
}

func (m *mockAdmin) RemoveProduct(_ context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, id)
	return nil
}

type mockCatalogReader struct {
	stats domain.CatalogStats
	err   error
}

func (m *mockCatalogReader) Stats(_ context.Context) (domain.CatalogStats, error) {
	return m.stats, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type testDeps struct {
	rec       *mockRecommender
	assistant *mockAssistant
	admin     *mockAdmin
	catalog   *mockCatalogReader
	health    *mockHealth
}

func newTestRouter() (*testDeps, *chiv5.Mux) {
	deps := &testDeps{
		rec:       &mockRecommender{},
		assistant: &mockAssistant{},
		admin:     &mockAdmin{},
		catalog:   &mockCatalogReader{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"cache": healthuc.CheckOK},
		}},
	}
	srv := NewServer(deps.rec, deps.assistant, deps.admin, deps.catalog, deps.health, zap.NewNop())
	r := chiv5.NewRouter()
	srv.Mount(r)
	return deps, r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
