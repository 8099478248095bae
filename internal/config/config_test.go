package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("WYSCOUT_USERNAME", "scout")
	t.Setenv("WYSCOUT_PASSWORD", "secret")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_RequiresProviderCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WYSCOUT_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when WYSCOUT_PASSWORD is missing")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "uptrace-dsn=https://token@uptrace.example/1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@uptrace.example/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_SERVICE_NAME", "matchdesk-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "matchdesk-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	setRequiredEnv(t)

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	setRequiredEnv(t)

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_WyscoutConfigParsing(t *testing.T) {
	setRequiredEnv(t)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.WyscoutBaseURLV2 != "https://apirest.wyscout.com/v2" {
			t.Fatalf("unexpected v2 base url: %q", cfg.WyscoutBaseURLV2)
		}
		if cfg.WyscoutBaseURLV3 != "https://apirest.wyscout.com/v3" {
			t.Fatalf("unexpected v3 base url: %q", cfg.WyscoutBaseURLV3)
		}
		if cfg.WyscoutTimeout != 20*time.Second {
			t.Fatalf("unexpected default timeout: %s", cfg.WyscoutTimeout)
		}
		if cfg.WyscoutMaxRetries != 1 {
			t.Fatalf("unexpected default max retries: %d", cfg.WyscoutMaxRetries)
		}
		if !cfg.WyscoutCircuitEnabled {
			t.Fatalf("expected circuit breaker enabled by default")
		}
	})

	t.Run("invalid retries", func(t *testing.T) {
		t.Setenv("WYSCOUT_MAX_RETRIES", "-1")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative WYSCOUT_MAX_RETRIES")
		}
	})

	t.Run("invalid circuit failure count", func(t *testing.T) {
		t.Setenv("WYSCOUT_MAX_RETRIES", "1")
		t.Setenv("WYSCOUT_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for WYSCOUT_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestLoad_DirectoryConfigParsing(t *testing.T) {
	setRequiredEnv(t)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.DirectoryIntrospectPath != "/v1/auth/introspect" {
			t.Fatalf("unexpected introspect path: %q", cfg.DirectoryIntrospectPath)
		}
		if cfg.DirectoryUsersPath != "/v1/users" {
			t.Fatalf("unexpected users path: %q", cfg.DirectoryUsersPath)
		}
		if cfg.DirectoryPrincipalTTL != 30*time.Second {
			t.Fatalf("unexpected principal ttl: %s", cfg.DirectoryPrincipalTTL)
		}
		if cfg.DirectoryUsersTTL != 5*time.Minute {
			t.Fatalf("unexpected users ttl: %s", cfg.DirectoryUsersTTL)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Setenv("DIRECTORY_TIMEOUT", "0s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for DIRECTORY_TIMEOUT=0s")
		}
	})
}

func TestLoad_ExportFilenamePrefixDefault(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ExportFilenamePrefix != "fixtures" {
		t.Fatalf("unexpected export filename prefix: %q", cfg.ExportFilenamePrefix)
	}
}
