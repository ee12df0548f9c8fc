package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OMDB_API_KEY",
		"MOVIECACHE_OMDB_API_KEY",
		"MOVIECACHE_CACHE_FILE",
		"MOVIECACHE_DATABASE_FILE",
		"MOVIECACHE_LOG_LEVEL",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://www.omdbapi.com", cfg.OMDb.BaseURL)
	assert.Equal(t, "https://www.imdb.com", cfg.IMDb.BaseURL)
	assert.Equal(t, "cache.json", cfg.Cache.File)
	assert.Equal(t, "movie.sqlite", cfg.Database.File)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Encoding)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOVIECACHE_OMDB_API_KEY", "abc123")
	t.Setenv("MOVIECACHE_CACHE_FILE", "/tmp/c.json")
	t.Setenv("MOVIECACHE_LOG_LEVEL", "debug")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.OMDb.APIKey)
	assert.Equal(t, "/tmp/c.json", cfg.Cache.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PlainAPIKeyVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("OMDB_API_KEY", " plainkey\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "plainkey", cfg.OMDb.APIKey)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOVIECACHE_DATABASE_FILE", "env.sqlite")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("cache-file", "", "")
	require.NoError(t, flags.Parse([]string{"--db", "flag.sqlite"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "flag.sqlite", cfg.Database.File)
	assert.Equal(t, "cache.json", cfg.Cache.File, "unset flags fall through to defaults")
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "moviecache.yaml")
	content := "omdb:\n  api_key: filekey\nserver:\n  http_addr: \":9090\"\nhttp:\n  timeout: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "filekey", cfg.OMDb.APIKey)
	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate_Timeout(t *testing.T) {
	cfg := Config{OMDb: OMDbConfig{APIKey: "k"}}
	assert.Error(t, cfg.Validate())
}
