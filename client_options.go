package searchfed

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/domain/filter"
	domsearch "github.com/openfacet/searchfed/internal/domain/search"
	cloudrepo "github.com/openfacet/searchfed/internal/repository/cloud"
	portalrepo "github.com/openfacet/searchfed/internal/repository/portal"
)

type portalConfig struct {
	endpoint string
	opts     portalrepo.Options
}

type synonymsConfig struct {
	siteURL          string
	listName         string
	freshnessMinutes int
}

type termStoreConfig struct {
	endpoint         string
	freshnessMinutes int
}

type clientConfig struct {
	httpClient     *http.Client
	logger         *zap.Logger
	cacheAddrs     []string
	cacheUsername  string
	cachePassword  string
	portal         *portalConfig
	cloud          *cloudrepo.Options
	webapiEndpoint string
	synonyms       *synonymsConfig
	termStore      *termStoreConfig
	filters        []filter.Configuration
	verticals      []domsearch.Vertical
}

// Option configures the Client.
type Option func(*clientConfig)

// WithPortal registers the platform search REST backend.
func WithPortal(endpoint string, opts portalrepo.Options) Option {
	return func(c *clientConfig) {
		c.portal = &portalConfig{endpoint: endpoint, opts: opts}
	}
}

// WithCloud registers the Graph-style search backend.
func WithCloud(opts cloudrepo.Options) Option {
	return func(c *clientConfig) { c.cloud = &opts }
}

// WithWebAPI registers a custom web API backend.
func WithWebAPI(endpoint string) Option {
	return func(c *clientConfig) { c.webapiEndpoint = endpoint }
}

// WithCache enables result caching for synonym tables and term labels.
func WithCache(addrs []string, username, password string) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cacheUsername = username
		c.cachePassword = password
	}
}

// WithSynonyms enables query expansion from a hosted synonym list.
func WithSynonyms(siteURL, listName string, freshnessMinutes int) Option {
	return func(c *clientConfig) {
		c.synonyms = &synonymsConfig{
			siteURL:          siteURL,
			listName:         listName,
			freshnessMinutes: freshnessMinutes,
		}
	}
}

// WithTermStore enables taxonomy label resolution on facet values.
func WithTermStore(endpoint string, freshnessMinutes int) Option {
	return func(c *clientConfig) {
		c.termStore = &termStoreConfig{
			endpoint:         endpoint,
			freshnessMinutes: freshnessMinutes,
		}
	}
}

// WithFilters sets the filter configurations used by every query.
func WithFilters(configs ...filter.Configuration) Option {
	return func(c *clientConfig) { c.filters = configs }
}

// WithVerticals sets the named verticals a query may scope to.
func WithVerticals(verticals ...domsearch.Vertical) Option {
	return func(c *clientConfig) { c.verticals = verticals }
}

// WithHTTPClient overrides the HTTP client used for all backend calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}
