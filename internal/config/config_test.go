package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittogether/server/pkg/jwt"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "none", cfg.Events.Driver)
	assert.Equal(t, "dm-events", cfg.Events.Kafka.Topic)
	assert.Equal(t, "https://kauth.kakao.com", cfg.Kakao.AuthBaseURL)
	assert.False(t, cfg.DM.RequireSenderToken)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestShippedConfigHasNoJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadFrom("../../config")
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Database.Driver, "shipped config.yaml was not read")

	assert.Empty(t, cfg.JWT.Secret)
	_, err = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)

	t.Setenv("JWT_SECRET", "from-env")
	cfg, err = LoadFrom("../../config")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("EVENTS_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("DM_REQUIRE_SENDER_TOKEN", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, "kafka", cfg.Events.Driver)
	assert.Equal(t, "kafka-1:9092,kafka-2:9092", cfg.Events.Kafka.Brokers)
	assert.True(t, cfg.DM.RequireSenderToken)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Server.TrustedProxies)
}
