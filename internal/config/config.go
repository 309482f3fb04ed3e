package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/backend-kco/internal/store"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	CORSAllowedOrigins []string

	KlarnaMerchantID   string
	KlarnaSharedSecret string
	KlarnaBaseURL      string
	KlarnaSandbox      bool

	ShowShippingOptions bool
	ProductBaseURL      string
	MediaBaseURL        string
	WidgetOptions       string
	MerchantAffiliation string

	SelectionTTL time.Duration
	StoreViews   []store.View

	CollectorURL  string
	NewsletterURL string

	RateLimit         string
	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          strings.TrimSpace(k.String("JWT_ISSUER")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		KlarnaMerchantID:   k.String("KLARNA_MERCHANT_ID"),
		KlarnaSharedSecret: k.String("KLARNA_SHARED_SECRET"),
		KlarnaBaseURL:      strings.TrimSpace(k.String("KLARNA_BASE_URL")),
		KlarnaSandbox:      parseBool(valueOrDefault(k.String("KLARNA_SANDBOX"), "true")),

		ShowShippingOptions: parseBool(k.String("KCO_SHOW_SHIPPING_OPTIONS")),
		ProductBaseURL:      strings.TrimSpace(k.String("KCO_PRODUCT_BASE_URL")),
		MediaBaseURL:        strings.TrimSpace(k.String("KCO_MEDIA_BASE_URL")),
		WidgetOptions:       strings.TrimSpace(k.String("KCO_WIDGET_OPTIONS")),
		MerchantAffiliation: valueOrDefault(k.String("KCO_MERCHANT_AFFILIATION"), "webshop"),

		SelectionTTL: parseDuration(k.String("KCO_SELECTION_TTL"), "72h"),
		StoreViews:   parseStoreViews(k.String("KCO_STORE_VIEWS")),

		CollectorURL:  strings.TrimSpace(k.String("ANALYTICS_COLLECTOR_URL")),
		NewsletterURL: strings.TrimSpace(k.String("NEWSLETTER_SIGNUP_URL")),

		RateLimit:         valueOrDefault(k.String("RATE_LIMIT"), "120-M"),
		WorkerConcurrency: parseInt(k.String("WORKER_CONCURRENCY"), 10),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.KlarnaMerchantID == "" {
		return nil, errors.New("KLARNA_MERCHANT_ID is required")
	}
	if cfg.KlarnaSharedSecret == "" {
		return nil, errors.New("KLARNA_SHARED_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// parseStoreViews decodes the store view list from its compact env
// encoding: views separated by ";", fields by ":", shipping countries
// by "|". Example:
//
//	de:DE:de-DE:EUR:DE|AT;se:SE:sv-SE:SEK:SE
func parseStoreViews(value string) []store.View {
	var views []store.View
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ":")
		if len(fields) < 4 {
			continue
		}
		view := store.View{
			Code:           strings.TrimSpace(fields[0]),
			Title:          strings.TrimSpace(fields[0]),
			DefaultCountry: strings.TrimSpace(fields[1]),
			DefaultLocale:  strings.TrimSpace(fields[2]),
			CurrencyCode:   strings.TrimSpace(fields[3]),
		}
		if len(fields) > 4 {
			for _, country := range strings.Split(fields[4], "|") {
				if c := strings.TrimSpace(country); c != "" {
					view.ShippingCountries = append(view.ShippingCountries, c)
				}
			}
		}
		if view.Code != "" {
			views = append(views, view)
		}
	}
	return views
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(trimmed, "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return n
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
