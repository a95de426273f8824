package config

import (
	"os"
	"testing"

	"github.com/openfacet/searchfed/internal/domain/filter"
	"github.com/openfacet/searchfed/internal/domain/search"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Backends: BackendsConfig{
			Portal: PortalConfig{Endpoint: "https://portal.example.com/_api/search"},
		},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_NoBackends(t *testing.T) {
	cfg := validConfig()
	cfg.Backends = BackendsConfig{}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no backend endpoint is configured")
	}
}

func TestValidate_BetaWithoutEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Backends.Cloud = CloudConfig{
		Endpoint: "https://graph.example.com/v1.0",
		UseBeta:  true,
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when use_beta is set without beta_endpoint")
	}
}

func TestValidate_BadFilterConfiguration(t *testing.T) {
	cfg := validConfig()
	cfg.Filters = []filter.Configuration{
		{FilterName: "FileType", Template: "NoSuchTemplate"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown filter template")
	}
}

func TestValidate_DuplicateVerticalKey(t *testing.T) {
	cfg := validConfig()
	cfg.Verticals = []search.Vertical{
		{Key: "docs", Name: "Documents"},
		{Key: "docs", Name: "More documents"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate vertical key")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("read timeout: got %d, want 10", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Backends.Portal.TimeoutSec != 30 {
		t.Errorf("portal timeout: got %d, want 30", cfg.Backends.Portal.TimeoutSec)
	}
	if len(cfg.Backends.Cloud.EntityTypes) != 1 || cfg.Backends.Cloud.EntityTypes[0] != "listItem" {
		t.Errorf("cloud entity types: got %v", cfg.Backends.Cloud.EntityTypes)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SEARCHFED_TEST_KEY", "secret-value")

	in := []byte("api_keys:\n  - ${SEARCHFED_TEST_KEY}\nendpoint: ${MISSING_VAR:-https://fallback}\n")
	out := string(expandEnvVars(in))

	want := "api_keys:\n  - secret-value\nendpoint: https://fallback\n"
	if out != want {
		t.Errorf("expand:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestGetEnv_Default(t *testing.T) {
	old := os.Getenv("ENV")
	defer os.Setenv("ENV", old)
	os.Unsetenv("ENV")

	if env := GetEnv(); env != "local" {
		t.Errorf("env: got %q, want local", env)
	}
}
