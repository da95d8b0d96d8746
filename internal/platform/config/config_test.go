package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := FromEnv("cedula-mx")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Verification.Parallelism)
	assert.Equal(t, 10*time.Second, cfg.Verification.LookupTimeout)
	assert.Equal(t, 5*time.Second, cfg.Verification.StatusTTLActive)
	assert.Equal(t, 10*time.Minute, cfg.Verification.StatusTTLFinal)
	assert.Equal(t, 48*time.Hour, cfg.Review.SLAWindow)
	assert.Equal(t, "*/15 * * * *", cfg.Review.SweepSchedule)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Contains(t, cfg.Registry, "cedula-mx")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VERIFY_PARALLELISM", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REVIEW_SLA_HOURS", "24")
	t.Setenv("REGISTRY_CEDULA_MX_PRIMARY_URL", "https://cedula.example/{number}")
	t.Setenv("PROFILE_CITATION_INDEX_API_KEY", "k")

	cfg, err := FromEnv("cedula-mx")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Verification.Parallelism)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.Review.SLAWindow)
	assert.Equal(t, "https://cedula.example/{number}", cfg.Registry["cedula-mx"].PrimaryURL)
	assert.Equal(t, "k", cfg.Profiles.CitationIndex.APIKey)
}

func TestFromEnvReportsEveryBadValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VERIFY_PARALLELISM", "many")
	t.Setenv("LOOKUP_TIMEOUT", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VERIFY_PARALLELISM")
	assert.Contains(t, err.Error(), "LOOKUP_TIMEOUT")
}

func TestFromEnvRejectsNonPositive(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VERIFY_PARALLELISM", "0")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "VERIFY_PARALLELISM must be positive")
}
