package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "3333", cfg.Port)
	assert.Equal(t, BackendFirestore, cfg.StoreBackend)
	assert.Equal(t, 10*time.Minute, cfg.ContentCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.Production())
}

func TestFromEnvOverrides(t *testing.T) {
	creds := `{"type":"service_account"}`
	cfg, err := FromEnv(envOf(map[string]string{
		"PORT":                      "8080",
		"APP_ENV":                   "production",
		"STORE_BACKEND":             "Postgres",
		"DATABASE_URL":              "postgres://localhost/akne",
		"CONTENT_CACHE_TTL":         "30s",
		"CORS_ORIGINS":              "https://aknedenik.cz, https://admin.aknedenik.cz",
		"STRIPE_PRICE_MONTHLY":      "price_m",
		"FIREBASE_CREDENTIALS_JSON": base64.StdEncoding.EncodeToString([]byte(creds)),
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 30*time.Second, cfg.ContentCacheTTL)
	assert.Equal(t, []string{"https://aknedenik.cz", "https://admin.aknedenik.cz"}, cfg.CORSOrigins)
	assert.Equal(t, "price_m", cfg.StripePrices["monthly"])
	assert.JSONEq(t, creds, string(cfg.FirebaseCredentialsJSON))
}

func TestFromEnvCollectsErrors(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{
		"PORT":              "abc",
		"STORE_BACKEND":     "postgres",
		"CONTENT_CACHE_TTL": "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "CONTENT_CACHE_TTL")

	_, err = FromEnv(envOf(map[string]string{"STORE_BACKEND": "mongo"}))
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestFromEnvProductionNeedsExplicitOrigins(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"APP_ENV": "production"}))
	assert.ErrorContains(t, err, "CORS_ORIGINS")

	_, err = FromEnv(envOf(map[string]string{"APP_ENV": "production", "CORS_ORIGINS": "https://aknedenik.cz,*"}))
	assert.ErrorContains(t, err, "CORS_ORIGINS")

	cfg, err := FromEnv(envOf(map[string]string{"APP_ENV": "prod", "CORS_ORIGINS": "https://aknedenik.cz"}))
	require.NoError(t, err)
	assert.True(t, cfg.Production())
}
