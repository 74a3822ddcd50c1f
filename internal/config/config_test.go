package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/internal/config"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := config.NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL.Std())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
http:
  port: 9090
  icon: https://example.com/icon.png
session:
  backend: redis
  ttl: 1h30m
  lock: true
  redis:
    addr: redis:6379
    prefix: "ff:"
schema:
  backend: blob
  bucket_url: file:///srv/forms
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, config.DefaultHTTPHost, cfg.HTTP.Host, "unset keys keep defaults")
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL.Std())
	assert.True(t, cfg.Session.Lock)
	assert.Equal(t, "ff:", cfg.Session.Redis.Prefix)
	assert.Equal(t, "file:///srv/forms", cfg.Schema.BucketURL)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formflow.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"session":{"ttl":"10m"},"schema":{"backend":"memory"}}`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL.Std())
	assert.Equal(t, config.BackendMemory, cfg.Schema.Backend)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := config.Load(path)
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FORMFLOW_HTTP_PORT", "7000")
	t.Setenv("FORMFLOW_SESSION_BACKEND", "redis")
	t.Setenv("FORMFLOW_SESSION_TTL", "2h")
	t.Setenv("FORMFLOW_REDIS_DB", "3")
	t.Setenv("FORMFLOW_RATE_LIMIT", "0.5")

	cfg := config.NewDefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7000, cfg.HTTP.Port)
	assert.Equal(t, config.BackendRedis, cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL.Std())
	assert.Equal(t, 3, cfg.Session.Redis.DB)
	assert.Equal(t, 0.5, cfg.HTTP.RateLimit)
}

func TestLoadFromEnvErrors(t *testing.T) {
	tests := map[string]string{
		"FORMFLOW_HTTP_PORT":    "70000",
		"FORMFLOW_SESSION_TTL":  "soon",
		"FORMFLOW_RATE_LIMIT":   "fast",
		"FORMFLOW_SESSION_LOCK": "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			assert.Error(t, config.NewDefaultConfig().LoadFromEnv())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"port", func(c *config.Config) { c.HTTP.Port = 0 }, config.ErrInvalidHTTPPort},
		{"session backend", func(c *config.Config) { c.Session.Backend = "etcd" }, config.ErrInvalidSessionBackend},
		{"schema backend", func(c *config.Config) { c.Schema.Backend = "loam" }, config.ErrInvalidSchemaBackend},
		{"ttl", func(c *config.Config) { c.Session.TTL = 0 }, config.ErrInvalidSessionTTL},
		{"rate", func(c *config.Config) { c.HTTP.RateLimit = -1 }, config.ErrInvalidRateLimit},
		{"lock without redis", func(c *config.Config) { c.Session.Lock = true }, config.ErrLockRequiresRedis},
		{"redis addr", func(c *config.Config) {
			c.Session.Backend = config.BackendRedis
			c.Session.Redis.Addr = ""
		}, config.ErrMissingRedisAddr},
		{"sqlite path", func(c *config.Config) { c.Schema.SQLitePath = "" }, config.ErrMissingSQLitePath},
		{"bucket", func(c *config.Config) {
			c.Schema.Backend = config.BackendBlob
			c.Schema.BucketURL = ""
		}, config.ErrMissingBucketURL},
		{"encryption key", func(c *config.Config) { c.Session.EncryptionKey = "c2hvcnQ=" }, config.ErrInvalidEncryptionKey},
		{"fallback without key", func(c *config.Config) {
			c.Session.FallbackKeys = []string{testKey}
		}, config.ErrInvalidEncryptionKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

const testKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func TestSessionEncryption(t *testing.T) {
	cfg := config.NewDefaultConfig()
	enc, err := cfg.Session.Encryption()
	require.NoError(t, err)
	assert.Nil(t, enc)

	cfg.Session.EncryptionKey = testKey
	cfg.Session.FallbackKeys = []string{testKey}
	require.NoError(t, cfg.Validate())

	enc, err = cfg.Session.Encryption()
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), enc.ActiveKey)
	assert.Len(t, enc.FallbackKeys, 1)
}
