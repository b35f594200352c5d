package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sportsdock/fixture-sync/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Fixture source backends.
const (
	SourceSportMonks = "sportmonks"
	SourceStatic     = "static"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	DBURL                   string
	DBDisablePreparedBinary bool
	CORSAllowedOrigins      []string
	InternalToken           string
	RefdataPath             string

	FixtureSource                 string
	SportMonksBaseURL             string
	SportMonksToken               string
	SportMonksTimeout             time.Duration
	SportMonksMaxRetries          int
	SportMonksResponseTTL         time.Duration
	SportMonksCircuitEnabled      bool
	SportMonksCircuitMinRequests  int
	SportMonksCircuitFailureRate  float64
	SportMonksCircuitOpenTimeout  time.Duration
	SportMonksCircuitHalfOpenReqs int

	SchedulerEnabled   bool
	SchedulerInterval  time.Duration
	SyncInterDateDelay time.Duration
	RefreshPoolSize    int

	PprofEnabled               bool
	PprofAddr                  string
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

	fixtureSource, err := parseFixtureSource(getEnv("FIXTURE_SOURCE", SourceStatic))
	if err != nil {
		return Config{}, err
	}

	sportMonksTimeout, err := time.ParseDuration(getEnv("SPORTMONKS_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_TIMEOUT: %w", err)
	}
	if sportMonksTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_TIMEOUT must be > 0")
	}
	sportMonksMaxRetries, err := getEnvAsInt("SPORTMONKS_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_MAX_RETRIES: %w", err)
	}
	if sportMonksMaxRetries < 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_MAX_RETRIES must be >= 0")
	}
	sportMonksResponseTTL, err := time.ParseDuration(getEnv("SPORTMONKS_RESPONSE_TTL", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_RESPONSE_TTL: %w", err)
	}
	if sportMonksResponseTTL <= 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_RESPONSE_TTL must be > 0")
	}
	sportMonksCircuitEnabled, err := strconv.ParseBool(getEnv("SPORTMONKS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_ENABLED: %w", err)
	}
	sportMonksCircuitMinRequests, err := getEnvAsInt("SPORTMONKS_CIRCUIT_MIN_REQUESTS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_MIN_REQUESTS: %w", err)
	}
	if sportMonksCircuitMinRequests < 1 {
		return Config{}, fmt.Errorf("SPORTMONKS_CIRCUIT_MIN_REQUESTS must be >= 1")
	}
	sportMonksCircuitFailureRate, err := getEnvAsFloat("SPORTMONKS_CIRCUIT_FAILURE_RATE", 0.5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_FAILURE_RATE: %w", err)
	}
	if sportMonksCircuitFailureRate <= 0 || sportMonksCircuitFailureRate > 1 {
		return Config{}, fmt.Errorf("SPORTMONKS_CIRCUIT_FAILURE_RATE must be in (0,1]")
	}
	sportMonksCircuitOpenTimeout, err := time.ParseDuration(getEnv("SPORTMONKS_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sportMonksCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	sportMonksCircuitHalfOpenReqs, err := getEnvAsInt("SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sportMonksCircuitHalfOpenReqs < 1 {
		return Config{}, fmt.Errorf("SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	sportMonksToken := strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", ""))
	if fixtureSource == SourceSportMonks && sportMonksToken == "" {
		return Config{}, fmt.Errorf("SPORTMONKS_TOKEN is required when FIXTURE_SOURCE=sportmonks")
	}

	schedulerEnabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_ENABLED: %w", err)
	}
	schedulerInterval, err := time.ParseDuration(getEnv("SCHEDULER_INTERVAL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_INTERVAL: %w", err)
	}
	if schedulerInterval <= 0 {
		return Config{}, fmt.Errorf("SCHEDULER_INTERVAL must be > 0")
	}
	syncInterDateDelay, err := time.ParseDuration(getEnv("SYNC_INTER_DATE_DELAY", "300ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_INTER_DATE_DELAY: %w", err)
	}
	if syncInterDateDelay < 0 {
		return Config{}, fmt.Errorf("SYNC_INTER_DATE_DELAY must be >= 0")
	}
	refreshPoolSize, err := getEnvAsInt("REFRESH_POOL_SIZE", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_POOL_SIZE: %w", err)
	}
	if refreshPoolSize < 1 {
		return Config{}, fmt.Errorf("REFRESH_POOL_SIZE must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
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

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "fixture-sync-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalToken:           strings.TrimSpace(getEnv("INTERNAL_API_TOKEN", "")),
		RefdataPath:             strings.TrimSpace(getEnv("REFDATA_PATH", "")),

		FixtureSource:                 fixtureSource,
		SportMonksBaseURL:             strings.TrimSpace(getEnv("SPORTMONKS_BASE_URL", "https://api.sportmonks.com/v3/football")),
		SportMonksToken:               sportMonksToken,
		SportMonksTimeout:             sportMonksTimeout,
		SportMonksMaxRetries:          sportMonksMaxRetries,
		SportMonksResponseTTL:         sportMonksResponseTTL,
		SportMonksCircuitEnabled:      sportMonksCircuitEnabled,
		SportMonksCircuitMinRequests:  sportMonksCircuitMinRequests,
		SportMonksCircuitFailureRate:  sportMonksCircuitFailureRate,
		SportMonksCircuitOpenTimeout:  sportMonksCircuitOpenTimeout,
		SportMonksCircuitHalfOpenReqs: sportMonksCircuitHalfOpenReqs,

		SchedulerEnabled:   schedulerEnabled,
		SchedulerInterval:  schedulerInterval,
		SyncInterDateDelay: syncInterDateDelay,
		RefreshPoolSize:    refreshPoolSize,

		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
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

// UseDatabase reports whether matches should be persisted to Postgres.
// Without DB_URL the service keeps matches in memory.
func (c Config) UseDatabase() bool {
	return c.DBURL != ""
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

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
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

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseFixtureSource(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case SourceSportMonks, SourceStatic:
		return value, nil
	default:
		return "", fmt.Errorf("invalid FIXTURE_SOURCE %q: valid values are %s, %s", v, SourceSportMonks, SourceStatic)
	}
}
