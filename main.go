// Package main provides the moviecache command: cached OMDb/IMDb lookups
// persisted into a small SQLite movie library.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moviecache/cache"
	"moviecache/config"
	"moviecache/database"
	"moviecache/fetch"
	"moviecache/library"
	"moviecache/logger"
	"moviecache/services"
)

// needsOMDb marks commands that call the OMDb API and therefore need a key
const needsOMDb = "needs_omdb"

// deps holds the dependencies shared by every command. The database is
// opened on first use so cache-only commands never create one.
type deps struct {
	cfg    config.Config
	logger *zap.Logger
	store  *cache.Store
	acq    *fetch.Acquirer
	db     *database.DB
	lib    *library.Library

	warmKnownFor bool
}

func newDeps(cfg config.Config, log *zap.Logger) *deps {
	store := cache.Open(cfg.Cache.File, log.Named("cache"))
	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	acq := fetch.New(store, client, log.Named("fetch"), fetch.WithUserAgent(cfg.HTTP.UserAgent))
	return &deps{cfg: cfg, logger: log, store: store, acq: acq}
}

func (rt *deps) library() (*library.Library, error) {
	if rt.lib != nil {
		return rt.lib, nil
	}

	db, err := database.NewDB(rt.cfg.Database.File)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	omdb := services.NewOMDbService(rt.cfg.OMDb.BaseURL, rt.cfg.OMDb.APIKey, rt.acq, rt.logger.Named("omdb"))
	imdb := services.NewIMDbService(rt.cfg.IMDb.BaseURL, rt.acq, rt.logger.Named("imdb"))

	rt.db = db
	var opts []library.Option
	if rt.warmKnownFor {
		opts = append(opts, library.WithKnownForWarmup())
	}
	rt.lib = library.New(db, omdb, imdb, rt.logger.Named("library"), opts...)
	return rt.lib, nil
}

func (rt *deps) close() {
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Warn("failed to close database", zap.Error(err))
		}
		rt.db = nil
		rt.lib = nil
	}
	stats := rt.acq.Stats()
	rt.logger.Debug("acquirer stats", zap.Int64("hits", stats.Hits), zap.Int64("misses", stats.Misses))
	_ = rt.logger.Sync()
}

// run wraps a command body so the deps are released on every exit path
func (rt *deps) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer rt.close()
		return fn(cmd, args)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	rt := &deps{}

	root := &cobra.Command{
		Use:           "moviecache",
		Short:         "Cached movie metadata lookups backed by a SQLite library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// a missing .env is normal; anything else is worth a warning
			dotenvErr := godotenv.Load()

			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Annotations[needsOMDb] == "true" {
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			log, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
				log.Warn("could not load .env file", zap.Error(dotenvErr))
			}

			*rt = *newDeps(cfg, log)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "optional YAML config file")
	flags.String("omdb-api-key", "", "OMDb API key")
	flags.String("cache-file", "", "payload cache file (default cache.json)")
	flags.String("db", "", "SQLite database file (default movie.sqlite)")
	flags.Duration("timeout", 0, "HTTP timeout for API calls and scrapes")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-encoding", "", "console or json")

	root.AddCommand(
		newSearchCmd(rt),
		newDetailsCmd(rt),
		newCastCmd(rt),
		newImportCmd(rt),
		newWatchCmd(rt),
		newListCmd(rt),
		newServeCmd(rt),
		newCacheCmd(rt),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
