// Package cloud adapts the Graph-style search backend to the search usecase
// contract.
package cloud

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

const backendName = "cloud"

// httpDoer is the consumer interface for the HTTP transport (ISP).
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options holds compile-time request settings.
type Options struct {
	// Endpoint and BetaEndpoint are base URLs; UseBeta selects between them
	// and gates the beta-only options.
	Endpoint              string
	BetaEndpoint          string
	UseBeta               bool
	EnableQueryAlteration bool
	EntityTypes           []string
	Fields                []string
	ContentSources        []string
}

// Repo implements usecase/search.Backend against the Graph-style search API.
type Repo struct {
	opts   Options
	http   httpDoer
	logger *zap.Logger
	now    func() time.Time
}

// New creates a cloud search repository.
func New(opts Options, client httpDoer, logger *zap.Logger) *Repo {
	return &Repo{
		opts:   opts,
		http:   client,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the reference-time source, for tests.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// Name returns the backend identifier.
func (r *Repo) Name() string { return backendName }

// endpoint selects the stable or beta base URL.
func (r *Repo) endpoint() string {
	if r.opts.UseBeta {
		return r.opts.BetaEndpoint
	}
	return r.opts.Endpoint
}

// Search compiles the data context, executes the query and normalizes the
// response.
func (r *Repo) Search(ctx context.Context, dc *search.Context) (search.Results, error) {
	req := Compile(dc, r.opts, r.now())
	metrics.CompilesTotal.WithLabelValues(backendName).Inc()

	var resp SearchResponse
	if err := r.post(ctx, r.endpoint()+"/search/query", req, &resp); err != nil {
		return search.Results{}, fmt.Errorf("cloud search: %w", err)
	}

	return Normalize(&resp), nil
}

// ValidateSortField checks server-side that a schema field is sortable.
func (r *Repo) ValidateSortField(ctx context.Context, field string) error {
	endpoint := r.endpoint() + "/search/fields/" + url.PathEscape(field)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build field request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("fetch field %s: %w: %w", field, domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewFieldValidation(field, "unknown field")
	}
	if resp.StatusCode != http.StatusOK {
		return backendError(resp)
	}

	var info FieldInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("decode field %s: %w", field, err)
	}
	if !info.IsSortable {
		return domain.NewFieldValidation(field, "field is not sortable")
	}
	return nil
}

// HealthCheck verifies the endpoint responds.
func (r *Repo) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint(), nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := r.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("cloud health: %w", err)
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
