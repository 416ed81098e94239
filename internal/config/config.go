// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server settings,
// logging, the upstream timings provider, cache TTL policy, calendar export
// defaults, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// UpstreamConfig describes the timings provider.
type UpstreamConfig struct {
	BaseURL string        // UPSTREAM_BASE_URL, e.g. "https://api.aladhan.com/v1"
	Timeout time.Duration // UPSTREAM_TIMEOUT per fetch; on expiry treated as fetch failure
}

// CacheConfig enumerates the cache tier settings. Timezone metadata
// deliberately has no TTL knob: a location's zone identifier never changes,
// so those entries are kept forever.
type CacheConfig struct {
	TimesTTL   time.Duration // TIMES_TTL for prayer-time entries (default 24h)
	SQLitePath string        // CACHE_DB_PATH for the durable SQLite store
	RedisAddr  string        // REDIS_ADDR; non-empty selects Redis as durable store
	RedisUser  string        // REDIS_USERNAME
	RedisPass  string        // REDIS_PASSWORD
}

// ExportConfig holds calendar export defaults.
type ExportConfig struct {
	EventDuration time.Duration // EVENT_DURATION per prayer event (default 30m)
	AlarmOffset   time.Duration // ALARM_OFFSET before start (default 15m); 0 disables
	MaxDays       int           // EXPORT_MAX_DAYS upper bound per request
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// Domain
	Upstream UpstreamConfig
	Cache    CacheConfig
	Export   ExportConfig

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Domain
		Upstream: UpstreamConfig{
			BaseURL: strings.TrimRight(getenv("UPSTREAM_BASE_URL", "https://api.aladhan.com/v1"), "/"),
			Timeout: getdur("UPSTREAM_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			TimesTTL:   getdur("TIMES_TTL", 24*time.Hour),
			SQLitePath: getenv("CACHE_DB_PATH", "prayersync.db"),
			RedisAddr:  getenv("REDIS_ADDR", ""),
			RedisUser:  getenv("REDIS_USERNAME", ""),
			RedisPass:  getenv("REDIS_PASSWORD", ""),
		},
		Export: ExportConfig{
			EventDuration: getdur("EVENT_DURATION", 30*time.Minute),
			AlarmOffset:   getdur("ALARM_OFFSET", 15*time.Minute),
			MaxDays:       getint("EXPORT_MAX_DAYS", 31),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "prayersync"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return errors.New("PORT must be numeric")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.Upstream.BaseURL) == "" {
		return errors.New("UPSTREAM_BASE_URL must not be empty")
	}
	if cfg.Upstream.Timeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	if cfg.Cache.TimesTTL <= 0 {
		return errors.New("TIMES_TTL must be > 0")
	}
	if cfg.Cache.RedisAddr == "" && strings.TrimSpace(cfg.Cache.SQLitePath) == "" {
		return errors.New("CACHE_DB_PATH must not be empty when REDIS_ADDR is unset")
	}
	if cfg.Export.EventDuration <= 0 {
		return errors.New("EVENT_DURATION must be > 0")
	}
	if cfg.Export.AlarmOffset < 0 {
		return errors.New("ALARM_OFFSET must be >= 0")
	}
	if cfg.Export.MaxDays < 1 || cfg.Export.MaxDays > 366 {
		return errors.New("EXPORT_MAX_DAYS must be in [1,366]")
	}
	if cfg.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
