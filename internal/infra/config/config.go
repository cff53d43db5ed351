package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env               string
	HTTPAddr          string
	BookingAPIBaseURL string
	BookingAPITimeout time.Duration
	DefaultCurrency   string
	SessionTTL        time.Duration
	SessionSweep      time.Duration
	AuthTokenSecret   string
	ListingsFixtures  string
	KafkaBrokers      []string
	KafkaTopic        string
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	S3UseSSL          bool
}

// Load parses configuration from the current environment. Kafka and S3
// settings are optional; the related side effects stay disabled when they
// are absent.
func Load() (Config, error) {
	cfg := Config{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		BookingAPIBaseURL: os.Getenv("BOOKING_API_URL"),
		DefaultCurrency:   strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		AuthTokenSecret:   os.Getenv("AUTH_TOKEN_SECRET"),
		ListingsFixtures:  getEnv("LISTINGS_FIXTURES", ""),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "checkout.completed"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3Bucket:          getEnv("S3_BUCKET", "kase-receipts"),
	}

	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	apiTimeout, err := parseDurationEnv("BOOKING_API_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.BookingAPITimeout = apiTimeout

	sessionTTL, err := parseDurationEnv("CHECKOUT_SESSION_TTL", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = sessionTTL

	sweep, err := parseDurationEnv("CHECKOUT_SESSION_SWEEP", time.Minute)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionSweep = sweep

	useSSL, err := parseBoolEnv("S3_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.S3UseSSL = useSSL

	if cfg.BookingAPIBaseURL == "" {
		return Config{}, fmt.Errorf("BOOKING_API_URL is required")
	}
	if len(cfg.DefaultCurrency) != 3 {
		return Config{}, fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
