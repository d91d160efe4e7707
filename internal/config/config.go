package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
// Pricing constants are named and overridable; they are never inlined at
// call sites.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	TaxRate                   decimal.Decimal
	MinChargeMinorUnits       int64
	AmountToleranceMinorUnits int64
	OrderNumberBase           int64
	BusinessTimezone          string

	MenuCacheTTL       time.Duration
	CheckoutLockTTL    time.Duration
	CheckoutRateWindow time.Duration
	CheckoutRateMax    int

	MigrateOnStart bool
	MigrationsPath string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	taxRate, err := parseRate(k.String("TAX_RATE"), "0.13")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		TaxRate:                   taxRate,
		MinChargeMinorUnits:       parseInt64(k.String("MIN_CHARGE_MINOR_UNITS"), 50),
		AmountToleranceMinorUnits: parseInt64(k.String("AMOUNT_TOLERANCE_MINOR_UNITS"), 2),
		OrderNumberBase:           parseInt64(k.String("ORDER_NUMBER_BASE"), 1000),
		BusinessTimezone:          valueOrDefault(k.String("BUSINESS_TIMEZONE"), "America/Toronto"),

		MenuCacheTTL:       parseDuration(k.String("MENU_CACHE_TTL"), "5m"),
		CheckoutLockTTL:    parseDuration(k.String("CHECKOUT_LOCK_TTL"), "10s"),
		CheckoutRateWindow: parseDuration(k.String("CHECKOUT_RATE_WINDOW"), "1m"),
		CheckoutRateMax:    int(parseInt64(k.String("CHECKOUT_RATE_MAX"), 30)),

		MigrateOnStart: parseBool(k.String("MIGRATE_ON_START")),
		MigrationsPath: valueOrDefault(k.String("MIGRATIONS_PATH"), "db/migrations"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.AmountToleranceMinorUnits < 0 {
		return nil, errors.New("AMOUNT_TOLERANCE_MINOR_UNITS must not be negative")
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

// BusinessLocation resolves the configured business timezone.
func (c *Config) BusinessLocation() (*time.Location, error) {
	return time.LoadLocation(c.BusinessTimezone)
}

func parseRate(value, fallback string) (decimal.Decimal, error) {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	rate, err := decimal.NewFromString(base)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("TAX_RATE must be a decimal fraction: %w", err)
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, errors.New("TAX_RATE must not be negative")
	}
	return rate, nil
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

func parseInt64(value string, fallback int64) int64 {
	base := strings.TrimSpace(value)
	if base == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(base, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// LoadForTests allows tests to override environment variables without
// touching the real environment.
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
