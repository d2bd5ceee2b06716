package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"ENV", "API_ORIGIN", "PAYPAL_CLIENT_ID", "MAX_UPLOAD_BYTES", "RESULT_STORE", "PAYMENT_AMOUNT", "SESSION_TTL", "COOKIE_SECURE", "PAYMENT_CURRENCY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "http://localhost:8000", cfg.APIOrigin)
	assert.Equal(t, DefaultPayPalClientID, cfg.PayPalClientID)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "memory", cfg.ResultStore)
	assert.InDelta(t, 39.0, cfg.PaymentAmount, 0.0001)
	assert.Equal(t, "EUR", cfg.PaymentCurrency)
	assert.Equal(t, time.Duration(0), cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("API_ORIGIN", "https://api.example.test/")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("RESULT_STORE", "Redis")
	t.Setenv("PAYMENT_AMOUNT", "49,50")
	t.Setenv("SESSION_TTL", "24h")

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "https://api.example.test", cfg.APIOrigin)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, "redis", cfg.ResultStore)
	assert.InDelta(t, 49.5, cfg.PaymentAmount, 0.0001)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REVIEW_CODE=from-file\nPAYMENT_CURRENCY=usd\n"), 0o600))
	t.Setenv("PAYMENT_CURRENCY", "eur")
	t.Setenv("REVIEW_CODE", "")
	require.NoError(t, os.Unsetenv("REVIEW_CODE"))

	cfg := Load()

	assert.Equal(t, "from-file", cfg.ReviewCode)
	assert.Equal(t, "EUR", cfg.PaymentCurrency)
}
