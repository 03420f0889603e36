package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. IndexReady is informational:
// a cold index serves keyword-only recommendations and does not degrade
// the service.
type Report struct {
	Status     Status
	Checks     map[string]CheckResult
	IndexReady bool
}

// Service coordinates health checks.
type Service struct {
	cache     CachePinger
	catalog   CatalogPinger
	embedding EmbeddingChecker
	index     IndexState
}

// New creates a Service. embedding and index can be nil.
func New(cache CachePinger, catalog CatalogPinger, embedding EmbeddingChecker, index IndexState) *Service {
	return &Service{cache: cache, catalog: catalog, embedding: embedding, index: index}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.cache.Ping(ctx); err != nil {
		checks["cache"] = CheckError
	} else {
		checks["cache"] = CheckOK
	}

	if err := s.catalog.Ping(ctx); err != nil {
		checks["catalog"] = CheckError
	} else {
		checks["catalog"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	ready := false
	if s.index != nil {
		ready = s.index.Ready()
	}

	return Report{Status: status, Checks: checks, IndexReady: ready}
}
