package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/formflow/pkg/persistence/middleware"
)

type (
	// Config holds the settings of a formflow process
	Config struct {
		LogLevel string        `yaml:"log_level" json:"log_level"`
		HTTP     HTTPConfig    `yaml:"http" json:"http"`
		Session  SessionConfig `yaml:"session" json:"session"`
		Schema   SchemaConfig  `yaml:"schema" json:"schema"`
	}

	// HTTPConfig configures the action API
	HTTPConfig struct {
		Host            string   `yaml:"host" json:"host"`
		Port            int      `yaml:"port" json:"port"`
		Icon            string   `yaml:"icon" json:"icon"`
		BasePath        string   `yaml:"base_path" json:"base_path"`
		RateLimit       float64  `yaml:"rate_limit" json:"rate_limit"`
		RateBurst       int      `yaml:"rate_burst" json:"rate_burst"`
		ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	}

	// SessionConfig selects where participant positions live
	SessionConfig struct {
		Backend string      `yaml:"backend" json:"backend"`
		TTL     Duration    `yaml:"ttl" json:"ttl"`
		Lock    bool        `yaml:"lock" json:"lock"`
		Redis   RedisConfig `yaml:"redis" json:"redis"`

		// EncryptionKey seals stored positions with AES-256-GCM when set
		// (base64, 32 bytes). FallbackKeys are accepted for reading only.
		EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
		FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
	}

	// RedisConfig holds connection settings for the Redis session store
	RedisConfig struct {
		Addr     string `yaml:"addr" json:"addr"`
		Password string `yaml:"password" json:"password"`
		DB       int    `yaml:"db" json:"db"`
		Prefix   string `yaml:"prefix" json:"prefix"`
	}

	// SchemaConfig selects where form documents are read from
	SchemaConfig struct {
		Backend    string `yaml:"backend" json:"backend"`
		SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
		BucketURL  string `yaml:"bucket_url" json:"bucket_url"`
		Prefix     string `yaml:"prefix" json:"prefix"`
	}

	// Duration is a time.Duration written as "24h" in config files
	Duration time.Duration
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendBlob   = "blob"

	DefaultHTTPHost        = "0.0.0.0"
	DefaultHTTPPort        = 8080
	DefaultBasePath        = "/api/actions/forms"
	DefaultRateLimit       = 5.0
	DefaultRateBurst       = 10
	DefaultShutdownTimeout = 5 * time.Second
	DefaultSessionTTL      = 24 * time.Hour
	DefaultRedisAddr       = "localhost:6379"
	DefaultSQLitePath      = "formflow.db"
	DefaultBucketURL       = "mem://"

	MaxTCPPort = 65535
	MaxRedisDB = 15
)

var (
	ErrInvalidHTTPPort       = errors.New("invalid HTTP port")
	ErrInvalidSessionBackend = errors.New("invalid session backend")
	ErrInvalidSchemaBackend  = errors.New("invalid schema backend")
	ErrInvalidSessionTTL     = errors.New("session ttl must be positive")
	ErrInvalidRateLimit      = errors.New("rate limit cannot be negative")
	ErrMissingRedisAddr      = errors.New("redis address is required")
	ErrMissingSQLitePath     = errors.New("sqlite path is required")
	ErrMissingBucketURL      = errors.New("bucket URL is required")
	ErrLockRequiresRedis     = errors.New("participant locking requires the redis session backend")
	ErrUnsupportedFormat     = errors.New("unsupported config file format")
	ErrInvalidEncryptionKey  = errors.New("invalid session encryption key")
)

// NewDefaultConfig creates a configuration that runs everything in one
// process: in-memory sessions and a local SQLite form database
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Host:            DefaultHTTPHost,
			Port:            DefaultHTTPPort,
			BasePath:        DefaultBasePath,
			RateLimit:       DefaultRateLimit,
			RateBurst:       DefaultRateBurst,
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Session: SessionConfig{
			Backend: BackendMemory,
			TTL:     Duration(DefaultSessionTTL),
			Redis: RedisConfig{
				Addr: DefaultRedisAddr,
			},
		},
		Schema: SchemaConfig{
			Backend:    BackendSQLite,
			SQLitePath: DefaultSQLitePath,
			BucketURL:  DefaultBucketURL,
		},
	}
}

// Load reads a YAML or JSON file over the defaults
func Load(path string) (*Config, error) {
	c := NewDefaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".json":
		err = json.Unmarshal(data, c)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// LoadFromEnv overrides configuration values from FORMFLOW_* environment
// variables. Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	loadEnvString("FORMFLOW_LOG_LEVEL", &c.LogLevel)
	loadEnvString("FORMFLOW_HTTP_HOST", &c.HTTP.Host)
	loadEnvString("FORMFLOW_ICON", &c.HTTP.Icon)
	loadEnvString("FORMFLOW_BASE_PATH", &c.HTTP.BasePath)
	loadEnvString("FORMFLOW_SESSION_BACKEND", &c.Session.Backend)
	loadEnvString("FORMFLOW_REDIS_ADDR", &c.Session.Redis.Addr)
	loadEnvString("FORMFLOW_REDIS_PASSWORD", &c.Session.Redis.Password)
	loadEnvString("FORMFLOW_REDIS_PREFIX", &c.Session.Redis.Prefix)
	loadEnvString("FORMFLOW_SESSION_KEY", &c.Session.EncryptionKey)
	loadEnvString("FORMFLOW_SCHEMA_BACKEND", &c.Schema.Backend)
	loadEnvString("FORMFLOW_SQLITE_PATH", &c.Schema.SQLitePath)
	loadEnvString("FORMFLOW_BUCKET_URL", &c.Schema.BucketURL)
	loadEnvString("FORMFLOW_BUCKET_PREFIX", &c.Schema.Prefix)

	if err := loadEnvInt("FORMFLOW_HTTP_PORT", &c.HTTP.Port, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt("FORMFLOW_RATE_BURST", &c.HTTP.RateBurst, 0, 1<<20); err != nil {
		return err
	}
	if err := loadEnvInt("FORMFLOW_REDIS_DB", &c.Session.Redis.DB, -1, MaxRedisDB); err != nil {
		return err
	}
	if s := os.Getenv("FORMFLOW_RATE_LIMIT"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid FORMFLOW_RATE_LIMIT: %q", s)
		}
		c.HTTP.RateLimit = v
	}
	if s := os.Getenv("FORMFLOW_SESSION_TTL"); s != "" {
		if err := c.Session.TTL.UnmarshalText([]byte(s)); err != nil {
			return fmt.Errorf("invalid FORMFLOW_SESSION_TTL: %w", err)
		}
	}
	if s := os.Getenv("FORMFLOW_SESSION_LOCK"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid FORMFLOW_SESSION_LOCK: %q", s)
		}
		c.Session.Lock = v
	}
	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidHTTPPort, c.HTTP.Port)
	}
	if c.HTTP.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.Session.TTL <= 0 {
		return ErrInvalidSessionTTL
	}

	switch c.Session.Backend {
	case BackendMemory:
		if c.Session.Lock {
			return ErrLockRequiresRedis
		}
	case BackendRedis:
		if c.Session.Redis.Addr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSessionBackend, c.Session.Backend)
	}

	if _, err := c.Session.Encryption(); err != nil {
		return err
	}

	switch c.Schema.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Schema.SQLitePath == "" {
			return ErrMissingSQLitePath
		}
	case BackendBlob:
		if c.Schema.BucketURL == "" {
			return ErrMissingBucketURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSchemaBackend, c.Schema.Backend)
	}
	return nil
}

// Encryption decodes the session keys. It returns nil when no key is set.
func (s SessionConfig) Encryption() (*middleware.EncryptionConfig, error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, fmt.Errorf("%w: fallback keys without an active key", ErrInvalidEncryptionKey)
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncryptionKey, err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range s.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("%w: fallback key %d: %w", ErrInvalidEncryptionKey, i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText writes the duration in Go syntax
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std converts to time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func loadEnvString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
