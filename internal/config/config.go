// Package config loads the blog's settings from defaults, an optional config
// file, a .env file and BLOG_* environment variables, in increasing order of
// precedence.
//
// Keys are dotted (database.driver) and map to environment variables by
// upper-casing and replacing dots: database.driver → BLOG_DATABASE_DRIVER.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// minSecretLength mirrors auth.NewSessionCodec.
const minSecretLength = 16

type Config struct {
	Server struct {
		Port int
	}
	Database struct {
		Driver string
		Path   string // sqlite file
		DSN    string // postgres connection string
	}
	Session struct {
		Secret string
		MaxAge time.Duration
		Secure bool
	}
	Log struct {
		Level string
	}
}

// Load reads the configuration. configFile may be empty, in which case a
// config.{yaml,json,toml} in the working directory is used if present.
func Load(configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 3000)
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/blog.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.maxage", 24*time.Hour)
	v.SetDefault("session.secure", false)
	v.SetDefault("log.level", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("config: database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("config: database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}

	if c.Session.Secret != "" && len(c.Session.Secret) < minSecretLength {
		return fmt.Errorf("config: session.secret must be at least %d characters", minSecretLength)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level (debug, info, warn, error).
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: invalid log.level %q", c.Log.Level)
	}
	return level, nil
}

// EnsureSessionSecret fills in a random secret when none is configured and
// reports whether it did. Sessions signed with a generated secret do not
// survive a restart.
func (c *Config) EnsureSessionSecret() (bool, error) {
	if c.Session.Secret != "" {
		return false, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return false, fmt.Errorf("config: generating session secret: %w", err)
	}
	c.Session.Secret = hex.EncodeToString(buf)
	return true, nil
}
