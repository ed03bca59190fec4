package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("METABOX_TOKEN_SECRET", "hunter2")
	os.Setenv("METABOX_TOKEN_TTL_MIN", "30")
	os.Setenv("METABOX_ADMIN", "false")
	defer func() {
		os.Unsetenv("METABOX_TOKEN_SECRET")
		os.Unsetenv("METABOX_TOKEN_TTL_MIN")
		os.Unsetenv("METABOX_ADMIN")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "hunter2", cfg.Token.Secret)
	assert.Equal(t, 30*time.Minute, cfg.Token.TTL)
	assert.False(t, cfg.Admin)
}

func TestGetEnvHelpers(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))
	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))
	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))
}
