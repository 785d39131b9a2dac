package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	storage := filepath.Join(t.TempDir(), "exports")
	dir := writeConfig(t, `
database:
  driver: sqlite
  path: test.db
storage:
  local_path: `+storage+`
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, 10*time.Minute, cfg.Redis.SurveyCacheTTL())
	assert.Equal(t, "logs/survey.log", cfg.Log.File)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)

	_, err = os.Stat(storage)
	assert.NoError(t, err, "local storage directory is created")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
database:
  driver: mysql
storage:
  type: minio
`)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: short
storage:
  type: minio
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is too short")
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: oracle
storage:
  type: minio
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestRateLimitWindow(t *testing.T) {
	assert.Equal(t, 5*time.Minute, RateLimitConfig{WindowMinutes: 5}.Window())
	assert.Equal(t, time.Minute, RateLimitConfig{}.Window())
}
