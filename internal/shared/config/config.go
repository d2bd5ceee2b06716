package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"zuschusscheck-web/internal/shared/telemetry"
)

const (
	// DefaultPayPalClientID is the sandbox client id the front end ships with
	// when PAYPAL_CLIENT_ID is unset.
	DefaultPayPalClientID = "ATUV5mqZLUqnp8XNPqGq9F8ZLIPQ3fxWdOtHw0Qx-jWVPqT_duG"

	defaultMaxUploadBytes = 5 << 20
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	APIOrigin       string
	CORSAllowOrigin []string
	BackendTimeout  time.Duration

	PayPalClientID  string
	PaymentAmount   float64
	PaymentCurrency string
	PayPalLocale    string

	MaxUploadBytes int64

	ResultStore   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	CookieSecure  bool

	ReviewCode string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		APIOrigin:       strings.TrimRight(getEnv("API_ORIGIN", "http://localhost:8000"), "/"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "")),
		BackendTimeout:  time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 120)) * time.Second,
		PayPalClientID:  getEnv("PAYPAL_CLIENT_ID", DefaultPayPalClientID),
		PaymentAmount:   getEnvFloat("PAYMENT_AMOUNT", 39.00),
		PaymentCurrency: strings.ToUpper(getEnv("PAYMENT_CURRENCY", "EUR")),
		PayPalLocale:    getEnv("PAYPAL_LOCALE", "de_DE"),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		ResultStore:     normalizeStoreType(getEnv("RESULT_STORE", "memory")),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		SessionTTL:      getEnvDuration("SESSION_TTL", 0),
		CookieSecure:    getEnvBool("COOKIE_SECURE", env == "production"),
		ReviewCode:      strings.TrimSpace(os.Getenv("REVIEW_CODE")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", defaultLogFormat(env)),
	}

	if env == "production" && os.Getenv("PAYPAL_CLIENT_ID") == "" {
		telemetry.Warn("config.paypal_client_id.default", map[string]any{"env": env})
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = 120 * time.Second
	}

	return cfg
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}

func defaultLogFormat(env string) string {
	if env == "dev" || env == "local" {
		return "console"
	}
	return "json"
}
