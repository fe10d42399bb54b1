package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", secret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 5*time.Second, cfg.Poller.Backoff)
	assert.Equal(t, 10*time.Second, cfg.Poller.FetchTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Dispatcher.SendDelay)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTPServer.Host)
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoadWithoutJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	cfg, err := Load()
	require.NoError(t, err, "one-shot modes need no API secret")
	assert.ErrorContains(t, cfg.ValidateServer(), "JWT_SECRET_KEY")

	cfg.JWT.SecretKey = "short"
	assert.Error(t, cfg.ValidateServer())

	cfg.JWT.SecretKey = secret
	cfg.HTTPServer.Port = 0
	assert.ErrorContains(t, cfg.ValidateServer(), "HTTP_PORT")
}

func TestLoadValidates(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_BACKEND")

	t.Setenv("STORAGE_BACKEND", StorageRedis)
	t.Setenv("STORAGE_BACKUP", "tape")
	_, err = Load()
	assert.ErrorContains(t, err, "STORAGE_BACKUP")
}
