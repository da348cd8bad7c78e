// Package config loads settings for the guestbook binaries.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables prefixed with GUESTBOOK_ (for example
// GUESTBOOK_BACKEND or GUESTBOOK_DYNAMODB_TABLE). Later layers override
// earlier ones only for the values they set.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jacentio/guestbook/guestbook"
	"github.com/jacentio/guestbook/store"
	"github.com/jacentio/guestbook/stream"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GUESTBOOK"

// Backend names a key-value store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendDynamoDB Backend = "dynamodb"
)

// Config holds the settings shared by the CLI and the stream Lambda.
//
// envconfig tags carry no defaults so that an unset variable keeps the
// value from the file.
type Config struct {
	// Backend selects where entries are kept.
	Backend Backend `yaml:"backend" envconfig:"BACKEND"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`

	// DynamoDB settings for the dynamodb backend and the stream handler.
	DynamoTable    string `yaml:"dynamodb_table" envconfig:"DYNAMODB_TABLE"`
	Namespace      string `yaml:"namespace" envconfig:"NAMESPACE"`
	Region         string `yaml:"region" envconfig:"REGION"`
	DynamoEndpoint string `yaml:"dynamodb_endpoint" envconfig:"DYNAMODB_ENDPOINT"`

	// MaxEntries and BotName override the guestbook defaults when set.
	MaxEntries int    `yaml:"max_entries" envconfig:"MAX_ENTRIES"`
	BotName    string `yaml:"bot_name" envconfig:"BOT_NAME"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// MetricsTextfile, when set, receives the notification counters in the
	// Prometheus text format when the CLI exits.
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	dynamo := store.DefaultDynamoConfig()
	return &Config{
		Backend:     BackendSQLite,
		SQLitePath:  "guestbook.db",
		DynamoTable: dynamo.TableName,
		Namespace:   dynamo.Namespace,
		LogLevel:    "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite_path is required for the sqlite backend"))
		}
	case BackendDynamoDB:
		if c.DynamoTable == "" {
			errs = append(errs, errors.New("dynamodb_table is required for the dynamodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported backend %q", c.Backend))
	}

	if c.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("max_entries must not be negative, got %d", c.MaxEntries))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Guestbook returns the Book configuration. Unset values keep the guestbook
// defaults.
func (c *Config) Guestbook() guestbook.Config {
	gb := guestbook.DefaultConfig()
	if c.MaxEntries > 0 {
		gb.MaxEntries = c.MaxEntries
	}
	if c.BotName != "" {
		gb.BotName = c.BotName
	}
	return gb
}

// Dynamo returns the DynamoDB backend configuration.
func (c *Config) Dynamo() store.DynamoConfig {
	return store.DynamoConfig{
		TableName: c.DynamoTable,
		Namespace: c.Namespace,
	}
}

// Stream returns the change-feed handler configuration matching the
// guestbook and DynamoDB settings.
func (c *Config) Stream() stream.Config {
	gb := c.Guestbook()
	return stream.Config{
		Namespace:  c.Namespace,
		EntriesKey: gb.EntriesKey,
		SecretKey:  gb.SecretKey,
		BotName:    gb.BotName,
	}
}
