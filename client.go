// Package searchfed wires the federation pipeline in-process: the same
// compilers, normalizers and synonym expansion the server runs, without the
// HTTP layer. Point it at your backends and query.
package searchfed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/db"
	dbRedis "github.com/openfacet/searchfed/internal/db/redis"
	"github.com/openfacet/searchfed/internal/domain/filter"
	domsearch "github.com/openfacet/searchfed/internal/domain/search"
	"github.com/openfacet/searchfed/internal/metrics"
	cloudrepo "github.com/openfacet/searchfed/internal/repository/cloud"
	portalrepo "github.com/openfacet/searchfed/internal/repository/portal"
	synonymsrepo "github.com/openfacet/searchfed/internal/repository/synonyms"
	termstorerepo "github.com/openfacet/searchfed/internal/repository/termstore"
	webapirepo "github.com/openfacet/searchfed/internal/repository/webapi"
	healthuc "github.com/openfacet/searchfed/internal/usecase/health"
	searchuc "github.com/openfacet/searchfed/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the searchfed SDK entry point.
type Client struct {
	store     db.Store
	svc       *searchuc.Service
	health    *healthuc.Service
	configs   []filter.Configuration
	verticals []domsearch.Vertical
}

// New creates a Client wired against the configured backends. At least one
// backend option is required; the cache is optional.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	var store db.Store
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Username: cfg.cacheUsername,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("searchfed: create cache store: %w", err)
		}
		ctx := context.Background()
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("searchfed: cache not ready: %w", err)
		}
		store = s
	}

	client, err := wireClient(store, cfg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return client, nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	var (
		backends []searchuc.Backend
		checkers []healthuc.BackendChecker
	)

	if cfg.portal != nil {
		repo := portalrepo.New(cfg.portal.endpoint, cfg.portal.opts, cfg.httpClient, cfg.logger)
		backends = append(backends, repo)
		checkers = append(checkers, repo)
	}
	if cfg.cloud != nil {
		repo := cloudrepo.New(*cfg.cloud, cfg.httpClient, cfg.logger)
		backends = append(backends, repo)
		checkers = append(checkers, repo)
	}
	if cfg.webapiEndpoint != "" {
		repo := webapirepo.New(cfg.webapiEndpoint, cfg.httpClient, cfg.logger)
		backends = append(backends, repo)
		checkers = append(checkers, repo)
	}
	if len(backends) == 0 {
		return nil, errors.New("searchfed: at least one backend required (use WithPortal, WithCloud or WithWebAPI)")
	}

	svc := searchuc.New(backends...)

	if cfg.synonyms != nil {
		var provider searchuc.SynonymProvider = synonymsrepo.New(
			cfg.synonyms.siteURL, cfg.synonyms.listName, cfg.httpClient,
		)
		if store != nil {
			provider = synonymsrepo.NewCached(
				provider, store,
				cfg.synonyms.siteURL, cfg.synonyms.listName,
				cfg.synonyms.freshnessMinutes,
				metrics.SynonymCacheTotal, cfg.logger,
			)
		}
		svc.WithSynonyms(provider)
	}

	if cfg.termStore != nil {
		svc.WithTermResolver(termstorerepo.New(
			cfg.termStore.endpoint, cfg.httpClient, store,
			cfg.termStore.freshnessMinutes,
			metrics.TermCacheTotal, cfg.logger,
		))
	}

	return &Client{
		store:     store,
		svc:       svc,
		health:    healthuc.New(store, checkers...),
		configs:   cfg.filters,
		verticals: cfg.verticals,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cache connectivity. Without a cache it is a no-op.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health runs the health checks against the cache and every backend.
func (c *Client) Health(ctx context.Context) healthuc.Report {
	return c.health.Check(ctx)
}

// ValidateSortField asks a backend whether a field is sortable.
func (c *Client) ValidateSortField(ctx context.Context, backend, field string) error {
	return c.svc.ValidateSortField(ctx, backend, field)
}
