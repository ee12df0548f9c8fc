// Package config loads runtime settings from the environment, an optional
// YAML file and command-line flags.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. MOVIECACHE_CACHE_FILE
const EnvPrefix = "MOVIECACHE"

// ErrMissingAPIKey is returned by Validate when no OMDb key is configured
var ErrMissingAPIKey = errors.New("OMDb API key is required (set MOVIECACHE_OMDB_API_KEY or OMDB_API_KEY)")

// Config is the resolved runtime configuration
type Config struct {
	OMDb     OMDbConfig     `mapstructure:"omdb"`
	IMDb     IMDbConfig     `mapstructure:"imdb"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// OMDbConfig configures the OMDb API client
type OMDbConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// IMDbConfig points the scraper at an IMDb host
type IMDbConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig locates the payload cache file
type CacheConfig struct {
	File string `mapstructure:"file"`
}

// DatabaseConfig locates the SQLite database file
type DatabaseConfig struct {
	File string `mapstructure:"file"`
}

// HTTPConfig configures the outbound client used for API calls and scrapes
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ServerConfig configures the HTTP API started by serve
type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

// LogConfig selects the zap level and encoding
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// flagKeys maps command-line flag names onto config keys
var flagKeys = map[string]string{
	"omdb-api-key": "omdb.api_key",
	"cache-file":   "cache.file",
	"db":           "database.file",
	"addr":         "server.http_addr",
	"timeout":      "http.timeout",
	"log-level":    "log.level",
	"log-encoding": "log.encoding",
}

// Load resolves the configuration. Precedence is flags, then environment,
// then the file at path (skipped when empty), then defaults. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("omdb.api_key", "")
	v.SetDefault("omdb.base_url", "http://www.omdbapi.com")
	v.SetDefault("imdb.base_url", "https://www.imdb.com")
	v.SetDefault("cache.file", "cache.json")
	v.SetDefault("database.file", "movie.sqlite")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", "")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	// the bare OMDB_API_KEY name is what existing secrets files use
	if err := v.BindEnv("omdb.api_key", EnvPrefix+"_OMDB_API_KEY", "OMDB_API_KEY"); err != nil {
		return Config{}, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, err
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.OMDb.APIKey = strings.TrimSpace(cfg.OMDb.APIKey)
	return cfg, nil
}

// Validate checks the settings needed by commands that call OMDb
func (c Config) Validate() error {
	if c.OMDb.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	return nil
}
