package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

type Config struct {
	Port        string
	Env         string
	CORSOrigins []string

	StoreBackend string
	DatabaseURL  string

	FirebaseProjectID       string
	FirebaseCredentialsJSON []byte
	FirebaseCredentialsFile string
	FirebaseStorageBucket   string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePrices        map[string]string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	ContentCacheTTL time.Duration

	MetricsUser string
	MetricsPass string
	PprofSecret string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:                    get("PORT", "3333"),
		Env:                     get("APP_ENV", "development"),
		CORSOrigins:             splitList(get("CORS_ORIGINS", "*")),
		StoreBackend:            strings.ToLower(get("STORE_BACKEND", BackendFirestore)),
		DatabaseURL:             get("DATABASE_URL", ""),
		FirebaseProjectID:       get("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: get("FIREBASE_CREDENTIALS_FILE", "./serviceAccountKey.json"),
		FirebaseStorageBucket:   get("FIREBASE_STORAGE_BUCKET", ""),
		StripeSecretKey:         get("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:     get("STRIPE_WEBHOOK_SECRET", ""),
		StripePrices: map[string]string{
			"monthly": get("STRIPE_PRICE_MONTHLY", ""),
			"yearly":  get("STRIPE_PRICE_YEARLY", ""),
		},
		CheckoutSuccessURL: get("CHECKOUT_SUCCESS_URL", "https://aknedenik.cz/platba/uspech"),
		CheckoutCancelURL:  get("CHECKOUT_CANCEL_URL", "https://aknedenik.cz/platba/zruseno"),
		MetricsUser:        get("METRICS_USER", ""),
		MetricsPass:        get("METRICS_PASS", ""),
		PprofSecret:        get("PPROF_SECRET", ""),
	}

	var errs []error

	if encoded := get("FIREBASE_CREDENTIALS_JSON", ""); encoded != "" {
		decoded, err := decodeBase64(encoded)
		if err != nil {
			errs = append(errs, fmt.Errorf("FIREBASE_CREDENTIALS_JSON: %w", err))
		}
		cfg.FirebaseCredentialsJSON = decoded
	}

	ttl, err := time.ParseDuration(get("CONTENT_CACHE_TTL", "10m"))
	if err != nil || ttl < 0 {
		errs = append(errs, fmt.Errorf("CONTENT_CACHE_TTL: invalid duration %q", getenv("CONTENT_CACHE_TTL")))
	}
	cfg.ContentCacheTTL = ttl

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT: %q is not a number", cfg.Port))
	}

	if cfg.Production() && slices.Contains(cfg.CORSOrigins, "*") {
		errs = append(errs, errors.New("CORS_ORIGINS must list explicit origins in production"))
	}

	switch cfg.StoreBackend {
	case BackendFirestore, BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND: unsupported backend %q", cfg.StoreBackend))
	}

	return cfg, errors.Join(errs...)
}

func (c Config) Production() bool {
	return c.Env == "prod" || c.Env == "production"
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
