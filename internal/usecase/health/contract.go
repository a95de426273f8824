package health

import "context"

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// BackendChecker checks a search backend's availability.
type BackendChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}
