// Package config loads server and CLI settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Contact sink drivers.
const (
	ContactMemory   = "memory"
	ContactPostgres = "postgres"
	ContactSQLite   = "sqlite3"
)

// Config holds every setting the commands read from the environment.
// cobra flags are applied on top of it by the caller.
type Config struct {
	Addr string

	Store      string
	StoreDir   string
	SessionTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// StateKey is a base64 AES-256 key. When set, stored sessions are encrypted.
	StateKey string
	// StateFallbackKeys are older keys still accepted for decryption.
	StateFallbackKeys []string

	ContactDriver string
	ContactDSN    string

	BundlesDir   string
	LogLevel     string
	LogFormat    string
	MaxInputSize int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:          ":8080",
		Store:         StoreMemory,
		StoreDir:      ".writ/sessions",
		SessionTTL:    24 * time.Hour,
		RedisAddr:     "localhost:6379",
		ContactDriver: ContactMemory,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads the given .env files (".env" when none are given) and then the
// WRIT_* environment variables. A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("WRIT_ADDR", &cfg.Addr)
	str("WRIT_STORE", &cfg.Store)
	str("WRIT_STORE_DIR", &cfg.StoreDir)
	str("WRIT_REDIS_ADDR", &cfg.RedisAddr)
	str("WRIT_REDIS_PASSWORD", &cfg.RedisPassword)
	num("WRIT_REDIS_DB", &cfg.RedisDB)
	str("WRIT_STATE_KEY", &cfg.StateKey)
	str("WRIT_CONTACT_DRIVER", &cfg.ContactDriver)
	str("WRIT_CONTACT_DSN", &cfg.ContactDSN)
	str("WRIT_BUNDLES_DIR", &cfg.BundlesDir)
	str("WRIT_LOG_LEVEL", &cfg.LogLevel)
	str("WRIT_LOG_FORMAT", &cfg.LogFormat)
	num("WRIT_MAX_INPUT_SIZE", &cfg.MaxInputSize)

	if v, ok := lookup("WRIT_STATE_FALLBACK_KEYS"); ok && v != "" {
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.StateFallbackKeys = append(cfg.StateFallbackKeys, k)
			}
		}
	}
	if v, ok := lookup("WRIT_SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("WRIT_SESSION_TTL: %w", err))
		} else {
			cfg.SessionTTL = d
		}
	}

	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated values and required companions.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store))
	}
	switch c.ContactDriver {
	case ContactMemory:
	case ContactPostgres, ContactSQLite:
		if c.ContactDSN == "" {
			errs = append(errs, fmt.Errorf("contact driver %q needs WRIT_CONTACT_DSN", c.ContactDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown contact driver %q (want memory, postgres or sqlite3)", c.ContactDriver))
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("session ttl must not be negative"))
	}
	if c.MaxInputSize < 0 {
		errs = append(errs, errors.New("max input size must not be negative"))
	}
	return errors.Join(errs...)
}
