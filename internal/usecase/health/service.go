package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	cache    CachePinger
	backends []BackendChecker
}

// New creates a Service. cache can be nil when caching is disabled.
func New(cache CachePinger, backends ...BackendChecker) *Service {
	return &Service{cache: cache, backends: backends}
}

// Check runs health checks against the cache and every registered backend.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	for _, b := range s.backends {
		if err := b.HealthCheck(ctx); err != nil {
			checks[b.Name()] = CheckError
		} else {
			checks[b.Name()] = CheckOK
		}
	}

	status := Healthy
	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}
	if failed > 0 {
		status = Degraded
	}
	if len(checks) > 0 && failed == len(checks) {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
