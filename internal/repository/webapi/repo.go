// Package webapi adapts a generic HTTP search endpoint to the search
// usecase contract. It is deliberately the thinnest backend: the endpoint
// already speaks a near-uniform request and response shape.
package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/domain"
	"github.com/openfacet/searchfed/internal/domain/filter"
	"github.com/openfacet/searchfed/internal/domain/refine"
	"github.com/openfacet/searchfed/internal/domain/search"
	"github.com/openfacet/searchfed/internal/metrics"
)

const backendName = "webapi"

// httpDoer is the consumer interface for the HTTP transport (ISP).
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is the generic search POST body.
type Request struct {
	Query   string              `json:"query"`
	From    int                 `json:"from"`
	Size    int                 `json:"size"`
	Filter  string              `json:"filter,omitempty"`
	Filters []filter.DataFilter `json:"filters,omitempty"`
	Sort    []search.SortField  `json:"sort,omitempty"`
}

// Response is the generic search response body.
type Response struct {
	Items      []search.Item         `json:"items"`
	Filters    []search.FilterResult `json:"filters,omitempty"`
	TotalCount int                   `json:"totalCount"`
}

// Repo implements usecase/search.Backend against a generic HTTP endpoint.
type Repo struct {
	endpoint string
	http     httpDoer
	logger   *zap.Logger
}

// New creates a web API search repository.
func New(endpoint string, client httpDoer, logger *zap.Logger) *Repo {
	return &Repo{endpoint: endpoint, http: client, logger: logger}
}

// Name returns the backend identifier.
func (r *Repo) Name() string { return backendName }

// Compile translates a data context into the generic request body.
func Compile(dc *search.Context) *Request {
	req := &Request{
		Query:   dc.QueryText(),
		From:    dc.Offset(),
		Size:    dc.ItemsPerPage(),
		Filters: dc.SelectedFilters(),
		Sort:    dc.SortFields(),
	}

	fragments := refine.Build(dc.SelectedFilters(), dc.Configurations())
	req.Filter = refine.Combine(fragments, dc.FilterOperator())

	return req
}

// Search compiles and executes the query.
func (r *Repo) Search(ctx context.Context, dc *search.Context) (search.Results, error) {
	req := Compile(dc)
	metrics.CompilesTotal.WithLabelValues(backendName).Inc()

	payload, err := json.Marshal(req)
	if err != nil {
		return search.Results{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return search.Results{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.http.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		metrics.BackendErrorsTotal.WithLabelValues(backendName).Inc()
		return search.Results{}, fmt.Errorf("webapi search: %w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.BackendRequestDuration.
		WithLabelValues(backendName, strconv.Itoa(resp.StatusCode)).
		Observe(duration.Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.BackendErrorsTotal.WithLabelValues(backendName).Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return search.Results{}, &domain.BackendError{
			Backend: backendName,
			Status:  resp.StatusCode,
			Message: string(bytes.TrimSpace(msg)),
		}
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return search.Results{}, fmt.Errorf("decode response: %w", err)
	}

	return search.Results{
		Items:      decoded.Items,
		Filters:    decoded.Filters,
		TotalCount: decoded.TotalCount,
	}, nil
}

// ValidateSortField accepts any field: the generic endpoint publishes no
// schema metadata to validate against.
func (r *Repo) ValidateSortField(context.Context, string) error { return nil }

// HealthCheck verifies the endpoint responds.
func (r *Repo) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := r.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("webapi health: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}
