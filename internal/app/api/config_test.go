package api

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	manifestsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "INVOICING_TIMEOUT", "INVOICING_COLLECTION_TYPE", "PROCESSING_ERROR_MAX_RETRIES", "ERROR_SWEEP_LIMIT", "MANIFEST_LOCK_TTL", "MANIFEST_CLAIM_TTL", "TEMPORAL_DISABLED", "INVOICING_RATE_LIMIT", "KAFKA_BROKERS", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, manifestsapp.DefaultCallTimeout, cfg.InvoicingTimeout)
	assert.Equal(t, manifestsapp.DefaultCollectionType, cfg.InvoicingCollectionType)
	assert.Equal(t, domain.DefaultMaxRetries, cfg.ProcessingErrorMaxRetries)
	assert.Zero(t, cfg.ErrorSweepLimit)
	assert.Zero(t, cfg.ManifestLockTTL)
	assert.Equal(t, manifestsapp.DefaultClaimTTL, cfg.ManifestClaimTTL)
	assert.False(t, cfg.TemporalDisabled)
	assert.Zero(t, cfg.InvoicingRateLimit)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadConfigOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("INVOICING_TIMEOUT", "5s")
	t.Setenv("PROCESSING_ERROR_MAX_RETRIES", "5")
	t.Setenv("ERROR_SWEEP_LIMIT", "200")
	t.Setenv("MANIFEST_LOCK_TTL", "1m")
	t.Setenv("MANIFEST_CLAIM_TTL", "15m")
	t.Setenv("TEMPORAL_DISABLED", "true")
	t.Setenv("INVOICING_RATE_LIMIT", "2.5")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://backoffice.example.ro")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.InvoicingTimeout)
	assert.Equal(t, 5, cfg.ProcessingErrorMaxRetries)
	assert.Equal(t, 200, cfg.ErrorSweepLimit)
	assert.Equal(t, time.Minute, cfg.ManifestLockTTL)
	assert.Equal(t, 15*time.Minute, cfg.ManifestClaimTTL)
	assert.True(t, cfg.TemporalDisabled)
	assert.InDelta(t, 2.5, cfg.InvoicingRateLimit, 0.001)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://backoffice.example.ro"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())
	cases := map[string]string{
		"INVOICING_TIMEOUT":            "soon",
		"PROCESSING_ERROR_MAX_RETRIES": "0",
		"ERROR_SWEEP_LIMIT":            "-3",
		"MANIFEST_LOCK_TTL":            "-1s",
		"INVOICING_RATE_LIMIT":         "fast",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.ErrorContains(t, err, key)
		})
	}
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
