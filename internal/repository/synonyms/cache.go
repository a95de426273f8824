package synonyms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/db"
	"github.com/openfacet/searchfed/internal/domain/synonym"
)

const cacheKeyPrefix = "searchfed:synonyms:"

// store is the consumer interface for the synonym cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// provider is the inner synonym source.
type provider interface {
	Table(ctx context.Context) ([]synonym.Entry, error)
}

// CachedProvider caches the synonym table in a key-value store under a
// deterministic key built from the site URL and list name. A freshness
// window of zero always refetches.
type CachedProvider struct {
	inner      provider
	store      store
	key        string
	freshness  time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewCached creates the caching decorator. cacheTotal is a counter vec with
// label "result" ("hit"/"miss"), passed explicitly.
func NewCached(
	inner provider,
	s store,
	siteURL, listName string,
	freshnessMinutes int,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedProvider {
	return &CachedProvider{
		inner:      inner,
		store:      s,
		key:        cacheKey(siteURL, listName),
		freshness:  time.Duration(freshnessMinutes) * time.Minute,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Table returns the cached table when fresh, otherwise refetches and stores
// the result for the freshness window.
func (c *CachedProvider) Table(ctx context.Context) ([]synonym.Entry, error) {
	if c.freshness > 0 {
		if table, ok := c.getFromCache(ctx); ok {
			c.incCache("hit")
			return table, nil
		}
		c.incCache("miss")
	}

	table, err := c.inner.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch synonym table: %w", err)
	}

	if c.freshness > 0 {
		c.putToCache(ctx, table)
	}
	return table, nil
}

func (c *CachedProvider) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedProvider) getFromCache(ctx context.Context) ([]synonym.Entry, bool) {
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached synonym table",
				zap.String("key", c.key), zap.Error(err))
		}
		return nil, false
	}

	var table []synonym.Entry
	if err := json.Unmarshal(data, &table); err != nil {
		c.logger.Warn("Failed to parse cached synonym table",
			zap.String("key", c.key), zap.Error(err))
		return nil, false
	}
	return table, true
}

func (c *CachedProvider) putToCache(ctx context.Context, table []synonym.Entry) {
	data, err := json.Marshal(table)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, c.key, data, c.freshness); err != nil {
		c.logger.Warn("Failed to cache synonym table",
			zap.String("key", c.key), zap.Error(err))
	}
}

// cacheKey builds the deterministic cache key from site URL and list name.
func cacheKey(siteURL, listName string) string {
	h := sha256.Sum256([]byte(siteURL + "|" + listName))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}
