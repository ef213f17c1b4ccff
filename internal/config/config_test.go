package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CARD_SECRET", "")
	t.Setenv("ALLOWED_IPS", "")
	t.Setenv("APP_ENV", "")

	cfg := Load()
	assert.Equal(t, DefaultCardSecret, cfg.CardSecret)
	assert.Equal(t, []string{"127.0.0.1", "::1"}, cfg.AllowedIPs)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CARD_SECRET", "s3cret")
	t.Setenv("ALLOWED_IPS", " 10.0.0.1, ,10.0.0.2 ")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RESET_DB", "true")

	cfg := Load()
	assert.Equal(t, "s3cret", cfg.CardSecret)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.AllowedIPs)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.ResetDB)
}

func TestValidate_Production(t *testing.T) {
	cfg := &Config{MySQLDSN: "dsn", AppEnv: "production", JWTSecret: defaultJWTSecret, CardSecret: "x"}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "real"
	cfg.CardSecret = DefaultCardSecret
	assert.Error(t, cfg.Validate())

	cfg.CardSecret = "real"
	assert.NoError(t, cfg.Validate())
}
