// Package config loads flightbook settings from an optional YAML file and
// FLIGHTBOOK_* environment variables, then checks the result against an
// embedded CUE schema.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment
// variables. Command-line flags are applied by the caller after Load.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/flightbook/internal/cache"
)

//go:embed schema.cue
var schemaSource string

// Environment variables read by Load.
const (
	EnvDBDriver      = "FLIGHTBOOK_DB_DRIVER"
	EnvDBDSN         = "FLIGHTBOOK_DB_DSN"
	EnvRedisAddr     = "FLIGHTBOOK_REDIS_ADDR"
	EnvRedisPassword = "FLIGHTBOOK_REDIS_PASSWORD"
	EnvRedisDB       = "FLIGHTBOOK_REDIS_DB"
	EnvCacheTTL      = "FLIGHTBOOK_CACHE_TTL"
	EnvLogLevel      = "FLIGHTBOOK_LOG_LEVEL"
)

// Config is the resolved process configuration.
type Config struct {
	Database Database `yaml:"database"`
	Cache    Cache    `yaml:"cache"`
	Retry    Retry    `yaml:"retry"`
	LogLevel string   `yaml:"log_level"`
}

// Database selects the storage backend.
type Database struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// DSN is a file path for sqlite and a connection string for postgres.
	DSN string `yaml:"dsn"`
}

// Cache configures the Redis search cache.
type Cache struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Retry paces re-runs of transactions that hit a serialization conflict.
type Retry struct {
	Backoff time.Duration `yaml:"backoff"`
	Burst   int           `yaml:"burst"`
}

// Default returns the configuration used when nothing is set: a local SQLite
// file, no cache, and info logging.
func Default() Config {
	redis := cache.DefaultRedisConfig()
	return Config{
		Database: Database{Driver: "sqlite", DSN: "flightbook.db"},
		Cache:    Cache{Addr: redis.Addr, DB: redis.DB, TTL: redis.TTL},
		Retry:    Retry{Backoff: 5 * time.Millisecond, Burst: 1},
		LogLevel: "info",
	}
}

// Load builds the configuration. An empty path skips the file; a named file
// that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays a YAML document onto cfg, rejecting unknown keys.
func decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDBDriver); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Cache.Addr = v
		cfg.Cache.Enabled = true
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		db, err := parseNonNegative(EnvRedisDB, v)
		if err != nil {
			return err
		}
		cfg.Cache.DB = db
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		cfg.Cache.TTL = ttl
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return nil
}

// Validate checks cfg against the embedded schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c.document()))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", strings.TrimSpace(cueerrors.Details(err, nil)))
	}
	return nil
}

// document is the schema's view of c, with durations in milliseconds.
func (c Config) document() map[string]any {
	return map[string]any{
		"database": map[string]any{
			"driver": c.Database.Driver,
			"dsn":    c.Database.DSN,
		},
		"cache": map[string]any{
			"enabled":  c.Cache.Enabled,
			"addr":     c.Cache.Addr,
			"password": c.Cache.Password,
			"db":       c.Cache.DB,
			"ttl_ms":   c.Cache.TTL.Milliseconds(),
		},
		"retry": map[string]any{
			"backoff_ms": c.Retry.Backoff.Milliseconds(),
			"burst":      c.Retry.Burst,
		},
		"log_level": c.LogLevel,
	}
}

// SlogLevel maps LogLevel onto slog. Unknown names fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves c to path, refusing to overwrite an existing file unless force
// is set.
func Write(path string, c Config, force bool) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return f.Close()
}

func parseNonNegative(name, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: expected a non-negative integer, got %q", name, v)
	}
	return n, nil
}
