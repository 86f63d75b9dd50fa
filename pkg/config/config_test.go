package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"SERVICE_NAME", "SERVER_PORT", "DATABASE_URL", "JWT_SECRET", "ACCESS_TOKEN_TTL_MINUTES",
		"KAFKA_BROKERS", "EVENT_BUFFER", "LOGIN_RATE_PER_MINUTE", "LOG_LEVEL", "CORS_ORIGINS",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "storefront", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, 256, cfg.EventBuffer)
	assert.Equal(t, 5, cfg.LoginRatePerMinute)
	assert.Equal(t, "info", cfg.LogLevel)
	require.EqualError(t, cfg.Require(), "missing required env DATABASE_URL")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://shop@localhost/shop")
	t.Setenv("JWT_SECRET", "k")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "10")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.NoError(t, cfg.Require())
}

func TestEnvIntDefault_BadValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	assert.Equal(t, 8080, EnvIntDefault("SERVER_PORT", 8080))
}

func TestRequire_MissingSecret(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://x"}
	require.EqualError(t, cfg.Require(), "missing required env JWT_SECRET")
}
