package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/datametrics/matchdesk/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	CORSAllowedOrigins         []string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	CacheEnabled               bool
	CacheTTL                   time.Duration
	PprofEnabled               bool
	PprofAddr                  string
	WyscoutUsername            string
	WyscoutPassword            string
	WyscoutBaseURLV2           string
	WyscoutBaseURLV3           string
	WyscoutTimeout             time.Duration
	WyscoutMaxRetries          int
	WyscoutCircuitEnabled      bool
	WyscoutCircuitFailureCount int
	WyscoutCircuitOpenTimeout  time.Duration
	WyscoutCircuitHalfOpenMax  int
	DirectoryBaseURL           string
	DirectoryIntrospectPath    string
	DirectoryUsersPath         string
	DirectoryTimeout           time.Duration
	DirectoryPrincipalTTL      time.Duration
	DirectoryUsersTTL          time.Duration
	ExportFilenamePrefix       string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	wyscoutTimeout, err := time.ParseDuration(getEnv("WYSCOUT_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WYSCOUT_TIMEOUT: %w", err)
	}
	if wyscoutTimeout <= 0 {
		return Config{}, fmt.Errorf("WYSCOUT_TIMEOUT must be > 0")
	}
	wyscoutMaxRetries, err := getEnvAsInt("WYSCOUT_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse WYSCOUT_MAX_RETRIES: %w", err)
	}
	if wyscoutMaxRetries < 0 {
		return Config{}, fmt.Errorf("WYSCOUT_MAX_RETRIES must be >= 0")
	}
	wyscoutCircuitEnabled, err := strconv.ParseBool(getEnv("WYSCOUT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WYSCOUT_CIRCUIT_ENABLED: %w", err)
	}
	wyscoutCircuitFailureCount, err := getEnvAsInt("WYSCOUT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse WYSCOUT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if wyscoutCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("WYSCOUT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	wyscoutCircuitOpenTimeout, err := time.ParseDuration(getEnv("WYSCOUT_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WYSCOUT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if wyscoutCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("WYSCOUT_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	wyscoutCircuitHalfOpenMax, err := getEnvAsInt("WYSCOUT_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse WYSCOUT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if wyscoutCircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("WYSCOUT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	wyscoutUsername := strings.TrimSpace(getEnv("WYSCOUT_USERNAME", ""))
	wyscoutPassword := strings.TrimSpace(getEnv("WYSCOUT_PASSWORD", ""))
	if wyscoutUsername == "" || wyscoutPassword == "" {
		return Config{}, fmt.Errorf("WYSCOUT_USERNAME and WYSCOUT_PASSWORD are required")
	}

	directoryTimeout, err := time.ParseDuration(getEnv("DIRECTORY_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DIRECTORY_TIMEOUT: %w", err)
	}
	if directoryTimeout <= 0 {
		return Config{}, fmt.Errorf("DIRECTORY_TIMEOUT must be > 0")
	}
	directoryPrincipalTTL, err := time.ParseDuration(getEnv("DIRECTORY_PRINCIPAL_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DIRECTORY_PRINCIPAL_TTL: %w", err)
	}
	directoryUsersTTL, err := time.ParseDuration(getEnv("DIRECTORY_USERS_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DIRECTORY_USERS_TTL: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "matchdesk-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		CacheEnabled:               cacheEnabled,
		CacheTTL:                   cacheTTL,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		WyscoutUsername:            wyscoutUsername,
		WyscoutPassword:            wyscoutPassword,
		WyscoutBaseURLV2:           strings.TrimSpace(getEnv("WYSCOUT_BASE_URL_V2", "https://apirest.wyscout.com/v2")),
		WyscoutBaseURLV3:           strings.TrimSpace(getEnv("WYSCOUT_BASE_URL_V3", "https://apirest.wyscout.com/v3")),
		WyscoutTimeout:             wyscoutTimeout,
		WyscoutMaxRetries:          wyscoutMaxRetries,
		WyscoutCircuitEnabled:      wyscoutCircuitEnabled,
		WyscoutCircuitFailureCount: wyscoutCircuitFailureCount,
		WyscoutCircuitOpenTimeout:  wyscoutCircuitOpenTimeout,
		WyscoutCircuitHalfOpenMax:  wyscoutCircuitHalfOpenMax,
		DirectoryBaseURL:           getEnv("DIRECTORY_BASE_URL", "http://localhost:8081"),
		DirectoryIntrospectPath:    getEnv("DIRECTORY_INTROSPECT_PATH", "/v1/auth/introspect"),
		DirectoryUsersPath:         getEnv("DIRECTORY_USERS_PATH", "/v1/users"),
		DirectoryTimeout:           directoryTimeout,
		DirectoryPrincipalTTL:      directoryPrincipalTTL,
		DirectoryUsersTTL:          directoryUsersTTL,
		ExportFilenamePrefix:       strings.TrimSpace(getEnv("EXPORT_FILENAME_PREFIX", "fixtures")),
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
