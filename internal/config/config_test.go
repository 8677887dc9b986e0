package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fql/internal/querysql"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fql.yaml", `
schema: ./models
catalog: ./words.yml
locale: es
style: html
dialect: postgres
database: postgres://localhost/app
store: saved.db
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Schema:   "./models",
		Catalog:  "./words.yml",
		Locale:   "es",
		Style:    "html",
		Dialect:  "postgres",
		Database: "postgres://localhost/app",
		Store:    "saved.db",
		LogLevel: "debug",
	}, cfg)
	assert.Equal(t, querysql.DialectPostgres, cfg.SQLDialect())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, "pgx", cfg.DriverName())
}

func TestLoadDefaultsForPartialFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fql.yaml", "schema: s\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s", cfg.Schema)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, querysql.DialectSQLite, cfg.SQLDialect())
	assert.Equal(t, "fql.db", cfg.Store)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Empty(t, cfg.DriverName())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fql.yaml", "schema: [unterminated\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fql.yaml", "locale: en\ndialect: sqlite\n")
	t.Setenv("FQL_LOCALE", "es")
	t.Setenv("FQL_DIALECT", "mysql")
	t.Setenv("FQL_DRIVER", "custom")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "es", cfg.Locale)
	assert.Equal(t, querysql.DialectMySQL, cfg.SQLDialect())
	assert.Equal(t, "custom", cfg.DriverName())
}

func TestLoadExpandsReferences(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fql.yaml", "database: ${FQL_TEST_DSN}/app\n")
	t.Setenv("FQL_TEST_DSN", "mysql://db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mysql://db/app", cfg.Database)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "FQL_STORE=from-dotenv.db\n")
	path := writeFile(t, dir, "fql.yaml", "store: from-file.db\n")
	t.Cleanup(func() { os.Unsetenv("FQL_STORE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Store)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "FQL_SCHEMA=from-dotenv\n")
	path := writeFile(t, dir, "fql.yaml", "")
	t.Setenv("FQL_SCHEMA", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Schema)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad dialect", func(c *Config) { c.Dialect = "oracle" }, `unknown dialect "oracle"`},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad style", func(c *Config) { c.Style = "markdown" }, `unknown style "markdown"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "FQL_LOG_LEVEL", EnvName("log_level"))
}

func TestSet(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Set("locale", "es"))
	require.NoError(t, cfg.Set("log_level", "warn"))
	assert.Equal(t, "es", cfg.Locale)
	assert.Equal(t, zerolog.WarnLevel, cfg.Level())

	err := cfg.Set("colour", "red")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown setting "colour"`)
}
