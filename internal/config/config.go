package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openfacet/searchfed/internal/domain/filter"
	"github.com/openfacet/searchfed/internal/domain/search"
)

// Config holds the searchfed service configuration.
type Config struct {
	HTTP      HTTPConfig             `yaml:"http"`
	Cache     CacheConfig            `yaml:"cache"`
	Auth      AuthConfig             `yaml:"auth"`
	Backends  BackendsConfig         `yaml:"backends"`
	Synonyms  SynonymsConfig         `yaml:"synonyms"`
	TermStore TermStoreConfig        `yaml:"term_store"`
	Filters   []filter.Configuration `yaml:"filters"`
	Verticals []search.Vertical      `yaml:"verticals"`
	Logging   LoggingConfig          `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds the key-value cache connection settings.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// BackendsConfig holds one section per search backend. A backend with an
// empty endpoint is disabled.
type BackendsConfig struct {
	Portal PortalConfig `yaml:"portal"`
	Cloud  CloudConfig  `yaml:"cloud"`
	WebAPI WebAPIConfig `yaml:"webapi"`
}

// PortalConfig holds the platform (KQL) search backend settings.
type PortalConfig struct {
	Endpoint         string   `yaml:"endpoint"`
	SourceID         string   `yaml:"source_id"`
	SelectProperties []string `yaml:"select_properties"`
	TrimDuplicates   bool     `yaml:"trim_duplicates"`
	EnableQueryRules bool     `yaml:"enable_query_rules"`
	TimeoutSec       int      `yaml:"timeout_sec"`
}

// CloudConfig holds the Graph-style search backend settings.
type CloudConfig struct {
	Endpoint     string `yaml:"endpoint"`
	BetaEndpoint string `yaml:"beta_endpoint"`
	// UseBeta selects the beta endpoint; beta-only options below are
	// ignored on the stable endpoint.
	UseBeta               bool     `yaml:"use_beta"`
	EnableQueryAlteration bool     `yaml:"enable_query_alteration"`
	EntityTypes           []string `yaml:"entity_types"`
	Fields                []string `yaml:"fields"`
	// ContentSources lists external connector IDs, translated to connector
	// path literals at compile time.
	ContentSources []string `yaml:"content_sources"`
	TimeoutSec     int      `yaml:"timeout_sec"`
}

// WebAPIConfig holds the generic HTTP search backend settings.
type WebAPIConfig struct {
	Endpoint   string `yaml:"endpoint"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SynonymsConfig locates the synonym list and its cache freshness window.
type SynonymsConfig struct {
	SiteURL  string `yaml:"site_url"`
	ListName string `yaml:"list_name"`
	// FreshnessMinutes is the cache window; 0 always refetches.
	FreshnessMinutes int `yaml:"freshness_minutes"`
}

// TermStoreConfig locates the taxonomy term store.
type TermStoreConfig struct {
	Endpoint         string `yaml:"endpoint"`
	FreshnessMinutes int    `yaml:"freshness_minutes"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Backends.Portal.TimeoutSec <= 0 {
		c.Backends.Portal.TimeoutSec = 30
	}
	if c.Backends.Cloud.TimeoutSec <= 0 {
		c.Backends.Cloud.TimeoutSec = 30
	}
	if c.Backends.WebAPI.TimeoutSec <= 0 {
		c.Backends.WebAPI.TimeoutSec = 30
	}
	if len(c.Backends.Cloud.EntityTypes) == 0 {
		c.Backends.Cloud.EntityTypes = []string{"listItem"}
	}
	if c.TermStore.TimeoutSec <= 0 {
		c.TermStore.TimeoutSec = 10
	}
	if c.TermStore.FreshnessMinutes < 0 {
		c.TermStore.FreshnessMinutes = 0
	}
	if c.Synonyms.FreshnessMinutes < 0 {
		c.Synonyms.FreshnessMinutes = 0
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	enabled := 0
	for _, endpoint := range []string{
		c.Backends.Portal.Endpoint, c.Backends.Cloud.Endpoint, c.Backends.WebAPI.Endpoint,
	} {
		if endpoint != "" {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one backend endpoint is required")
	}
	if c.Backends.Cloud.UseBeta && c.Backends.Cloud.BetaEndpoint == "" {
		return fmt.Errorf("backends.cloud.beta_endpoint is required when use_beta is set")
	}
	for i := range c.Filters {
		if err := c.Filters[i].Normalize(); err != nil {
			return fmt.Errorf("filters[%d]: %w", i, err)
		}
	}
	seen := make(map[string]struct{}, len(c.Verticals))
	for _, v := range c.Verticals {
		if v.Key == "" {
			return fmt.Errorf("verticals entries require a key")
		}
		if _, dup := seen[v.Key]; dup {
			return fmt.Errorf("duplicate vertical key %q", v.Key)
		}
		seen[v.Key] = struct{}{}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
