// Package portal adapts the platform (KQL-style) search backend to the
// search usecase contract.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/domain"
	"github.com/openfacet/searchfed/internal/domain/search"
	"github.com/openfacet/searchfed/internal/metrics"
)

const backendName = "portal"

// httpDoer is the consumer interface for the HTTP transport (ISP).
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options holds compile-time request settings.
type Options struct {
	SelectProperties []string
	TrimDuplicates   bool
	EnableQueryRules bool
	SourceID         string
}

// Repo implements usecase/search.Backend against the platform search REST API.
type Repo struct {
	endpoint string
	opts     Options
	http     httpDoer
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a portal search repository.
func New(endpoint string, opts Options, client httpDoer, logger *zap.Logger) *Repo {
	return &Repo{
		endpoint: endpoint,
		opts:     opts,
		http:     client,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the reference-time source, for tests.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// Name returns the backend identifier.
func (r *Repo) Name() string { return backendName }

// Search compiles the data context, executes the query and normalizes the
// response.
func (r *Repo) Search(ctx context.Context, dc *search.Context) (search.Results, error) {
	req := Compile(dc, r.opts, r.now())
	metrics.CompilesTotal.WithLabelValues(backendName).Inc()

	var resp Response
	if err := r.post(ctx, r.endpoint+"/postquery", req, &resp); err != nil {
		return search.Results{}, fmt.Errorf("portal search: %w", err)
	}

	return Normalize(&resp), nil
}

// ValidateSortField checks server-side that a managed property is sortable.
// A non-sortable field is a field-level validation error, not a request
// failure.
func (r *Repo) ValidateSortField(ctx context.Context, field string) error {
	endpoint := r.endpoint + "/properties?name=" + url.QueryEscape(field)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build property request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("fetch property %s: %w: %w", field, domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewFieldValidation(field, "unknown managed property")
	}
	if resp.StatusCode != http.StatusOK {
		return backendError(resp)
	}

	var info PropertyInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("decode property %s: %w", field, err)
	}
	if !info.Sortable {
		return domain.NewFieldValidation(field, "property is not sortable")
	}
	return nil
}

// HealthCheck verifies the endpoint responds.
func (r *Repo) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := r.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("portal health: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

func (r *Repo) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.http.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		metrics.BackendErrorsTotal.WithLabelValues(backendName).Inc()
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.BackendRequestDuration.
		WithLabelValues(backendName, strconv.Itoa(resp.StatusCode)).
		Observe(duration.Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.BackendErrorsTotal.WithLabelValues(backendName).Inc()
		return backendError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// backendError propagates the backend's status and message without retrying.
func backendError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &domain.BackendError{
		Backend: backendName,
		Status:  resp.StatusCode,
		Message: string(bytes.TrimSpace(msg)),
	}
}
