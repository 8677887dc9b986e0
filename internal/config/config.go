// Package config loads the fql command line configuration.
//
// Values come from three layers, later ones winning: the YAML file
// (fql.yaml by default), FQL_* environment variables (a .env file next to
// the config file is loaded first and never overrides variables already
// set), and command line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fql/internal/querysql"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "fql.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FQL_"

// Config is the resolved configuration.
type Config struct {
	// Schema is the directory holding the CUE model definitions.
	Schema string `yaml:"schema"`
	// Catalog is an optional YAML translation file merged over the
	// built-in catalogs.
	Catalog string `yaml:"catalog"`
	Locale  string `yaml:"locale"`
	// Style selects translation variants, e.g. "html".
	Style   string `yaml:"style"`
	Dialect string `yaml:"dialect"`
	// Driver is the database/sql driver used by exec. Empty picks the
	// driver matching Dialect.
	Driver   string `yaml:"driver"`
	Database string `yaml:"database"`
	// Store is the SQLite file holding saved queries.
	Store    string `yaml:"store"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Schema:   "schema",
		Locale:   "en",
		Dialect:  string(querysql.DialectSQLite),
		Store:    "fql.db",
		LogLevel: zerolog.InfoLevel.String(),
	}
}

// Load reads the config at path. An empty path means DefaultFile in the
// working directory, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if err := loadEnvFile(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.expand()
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// fields maps each setting to its YAML key.
func (c *Config) fields() []struct {
	key string
	ptr *string
} {
	return []struct {
		key string
		ptr *string
	}{
		{"schema", &c.Schema},
		{"catalog", &c.Catalog},
		{"locale", &c.Locale},
		{"style", &c.Style},
		{"dialect", &c.Dialect},
		{"driver", &c.Driver},
		{"database", &c.Database},
		{"store", &c.Store},
		{"log_level", &c.LogLevel},
	}
}

// expand substitutes ${VAR} and $VAR references in file values.
func (c *Config) expand() {
	for _, f := range c.fields() {
		*f.ptr = os.ExpandEnv(*f.ptr)
	}
}

// applyEnv overrides settings from FQL_<KEY> variables. A variable that is
// set but empty clears the setting.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for _, f := range c.fields() {
		if v, ok := lookup(EnvName(f.key)); ok {
			*f.ptr = v
		}
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	if c.Dialect == "" {
		c.Dialect = def.Dialect
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Set assigns the setting named by its YAML key.
func (c *Config) Set(key, value string) error {
	for _, f := range c.fields() {
		if f.key == key {
			*f.ptr = value
			return nil
		}
	}
	return fmt.Errorf("unknown setting %q", key)
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	if _, err := querysql.ParseDialect(c.Dialect); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.Style {
	case "", "html":
	default:
		return fmt.Errorf("unknown style %q (want html or empty)", c.Style)
	}
	return nil
}

// SQLDialect returns the parsed dialect. Call Validate first.
func (c *Config) SQLDialect() querysql.Dialect {
	d, _ := querysql.ParseDialect(c.Dialect)
	return d
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// DriverName returns the database/sql driver exec should open. An explicit
// Driver wins; otherwise the dialect picks one. sqlite is empty because the
// store registers its own driver.
func (c *Config) DriverName() string {
	if c.Driver != "" {
		return c.Driver
	}
	switch c.SQLDialect() {
	case querysql.DialectPostgres:
		return "pgx"
	case querysql.DialectMySQL:
		return "mysql"
	}
	return ""
}
