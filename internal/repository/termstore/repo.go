// Package termstore resolves taxonomy term IDs to display labels.
package termstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/db"
	"github.com/openfacet/searchfed/internal/domain"
)

const cacheKeyPrefix = "searchfed:term:"

// httpDoer is the consumer interface for the HTTP transport (ISP).
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// store is the consumer interface for the label cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// term is the wire shape of one term-store entry.
type term struct {
	ID    string `json:"id"`
	Label string `json:"defaultLabel"`
}

// Resolver resolves term IDs against the term-store endpoint, caching
// labels in the key-value store.
type Resolver struct {
	endpoint   string
	http       httpDoer
	store      store
	freshness  time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a term resolver. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"), passed explicitly; store may be nil to disable
// caching.
func New(
	endpoint string,
	client httpDoer,
	s store,
	freshnessMinutes int,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		endpoint:   strings.TrimRight(endpoint, "/"),
		http:       client,
		store:      s,
		freshness:  time.Duration(freshnessMinutes) * time.Minute,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Resolve maps term IDs to display labels within one term set. Lookups fan
// out concurrently and are joined back by ID, so their completion order
// never matters. A failed or missing term is simply absent from the result;
// one bad term never fails the batch.
func (r *Resolver) Resolve(ctx context.Context, termSetID string, ids []string) map[string]string {
	labels := make(map[string]string, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range ids {
		if id == "" {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			label, err := r.resolveOne(ctx, termSetID, id)
			if err != nil {
				r.logger.Debug("Term lookup failed",
					zap.String("term_set", termSetID),
					zap.String("term", id),
					zap.Error(err))
				return
			}
			mu.Lock()
			labels[id] = label
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	return labels
}

func (r *Resolver) resolveOne(ctx context.Context, termSetID, id string) (string, error) {
	key := cacheKeyPrefix + termSetID + ":" + id

	if r.store != nil && r.freshness > 0 {
		data, err := r.store.Get(ctx, key)
		if err == nil && len(data) > 0 {
			r.incCache("hit")
			return string(data), nil
		}
		if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Failed to get cached term label", zap.String("key", key), zap.Error(err))
		}
		r.incCache("miss")
	}

	label, err := r.fetch(ctx, termSetID, id)
	if err != nil {
		return "", err
	}

	if r.store != nil && r.freshness > 0 {
		if err := r.store.SetWithTTL(ctx, key, []byte(label), r.freshness); err != nil {
			r.logger.Warn("Failed to cache term label", zap.String("key", key), zap.Error(err))
		}
	}
	return label, nil
}

func (r *Resolver) fetch(ctx context.Context, termSetID, id string) (string, error) {
	endpoint := fmt.Sprintf("%s/termsets/%s/terms/%s",
		r.endpoint, url.PathEscape(termSetID), url.PathEscape(id))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build term request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("fetch term: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.ErrTermNotFound
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("term store returned %d", resp.StatusCode)
	}

	var t term
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return "", fmt.Errorf("decode term: %w", err)
	}
	if t.Label == "" {
		return "", domain.ErrTermNotFound
	}
	return t.Label, nil
}

func (r *Resolver) incCache(result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(result).Inc()
	}
}
