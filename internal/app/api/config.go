package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	manifestsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	RedisAddr         string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	InvoicingBaseURL        string
	InvoicingAPIKey         string
	InvoicingTimeout        time.Duration
	InvoicingCollectionType string
	InvoicingRateLimit      float64

	PipelineBaseURL string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// CORSAllowedOrigins empty allows every origin.
	CORSAllowedOrigins []string

	ProcessingErrorMaxRetries int
	ErrorSweepLimit           int
	ManifestLockTTL           time.Duration
	ManifestClaimTTL          time.Duration
}

// LoadConfig reads an optional .env file and the environment, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		Port:                    envDefault("PORT", "8080"),
		PostgresDSN:             strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:               strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		TemporalAddress:         envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:       envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:        isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		InvoicingBaseURL:        strings.TrimSpace(os.Getenv("INVOICING_BASE_URL")),
		InvoicingAPIKey:         strings.TrimSpace(os.Getenv("INVOICING_API_KEY")),
		InvoicingCollectionType: envDefault("INVOICING_COLLECTION_TYPE", manifestsapp.DefaultCollectionType),
		PipelineBaseURL:         strings.TrimSpace(os.Getenv("PIPELINE_BASE_URL")),
		KafkaBrokers:            splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:              strings.TrimSpace(os.Getenv("KAFKA_TOPIC")),
		KafkaGroupID:            strings.TrimSpace(os.Getenv("KAFKA_GROUP_ID")),
		CORSAllowedOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	var err error
	if cfg.InvoicingTimeout, err = envDuration("INVOICING_TIMEOUT", manifestsapp.DefaultCallTimeout); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("INVOICING_RATE_LIMIT")); raw != "" {
		if cfg.InvoicingRateLimit, err = strconv.ParseFloat(raw, 64); err != nil || cfg.InvoicingRateLimit < 0 {
			return Config{}, errors.New("INVOICING_RATE_LIMIT must be a non-negative number of requests per second")
		}
	}
	if cfg.ManifestLockTTL, err = envDuration("MANIFEST_LOCK_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.ManifestClaimTTL, err = envDuration("MANIFEST_CLAIM_TTL", manifestsapp.DefaultClaimTTL); err != nil {
		return Config{}, err
	}
	if cfg.ProcessingErrorMaxRetries, err = envPositiveInt("PROCESSING_ERROR_MAX_RETRIES", domain.DefaultMaxRetries); err != nil {
		return Config{}, err
	}
	if cfg.ErrorSweepLimit, err = envPositiveInt("ERROR_SWEEP_LIMIT", 0); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 30s", key)
	}
	return d, nil
}

func envPositiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
