package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PENALTY_SWEEP_INTERVAL", "PENALTY_SWEEP_BATCH", "REPUTATION_TIMEZONE", "LOG_RETENTION_DAYS", "LOG_LEVEL", "PORT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.PenaltySweepInterval)
	assert.Equal(t, 500, cfg.PenaltySweepBatch)
	assert.Equal(t, time.UTC, cfg.ReputationLocation)
	assert.Equal(t, 30, cfg.LogRetentionDays)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PENALTY_SWEEP_INTERVAL", "30s")
	t.Setenv("PENALTY_SWEEP_BATCH", "50")
	t.Setenv("REPUTATION_TIMEZONE", "Asia/Seoul")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.PenaltySweepInterval)
	assert.Equal(t, 50, cfg.PenaltySweepBatch)
	assert.Equal(t, "Asia/Seoul", cfg.ReputationLocation.String())
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("PENALTY_SWEEP_INTERVAL", "soon")
	t.Setenv("PENALTY_SWEEP_BATCH", "-3")
	t.Setenv("REPUTATION_TIMEZONE", "Mars/Olympus")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.PenaltySweepInterval)
	assert.Equal(t, 500, cfg.PenaltySweepBatch)
	assert.Equal(t, time.UTC, cfg.ReputationLocation)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
