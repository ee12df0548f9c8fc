package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moviecache/library"
	"moviecache/models"
)

func newSearchCmd(rt *deps) *cobra.Command {
	return &cobra.Command{
		Use:         "search <title>",
		Short:       "Search OMDb for a title and store every result",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{needsOMDb: "true"},
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			lib, err := rt.library()
			if err != nil {
				return err
			}
			movies, err := lib.FetchMovieList(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range movies {
				fmt.Fprintln(out, m.Info())
			}
			return nil
		}),
	}
}

func newDetailsCmd(rt *deps) *cobra.Command {
	return &cobra.Command{
		Use:         "details <title>",
		Short:       "Show the full OMDb record for a title",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{needsOMDb: "true"},
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			lib, err := rt.library()
			if err != nil {
				return err
			}
			m, err := lib.MovieDetails(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, m.Info())
			fmt.Fprintf(out, "Director: %s\nRating: %s\nRuntime: %s\n", m.Director, m.RatingText, m.RuntimeText)
			if m.Genre != "" {
				fmt.Fprintf(out, "Genre: %s\n", m.Genre)
			}
			if m.Plot != "" {
				fmt.Fprintf(out, "Plot: %s\n", m.Plot)
			}
			return nil
		}),
	}
}

func newCastCmd(rt *deps) *cobra.Command {
	var store, warm bool
	cmd := &cobra.Command{
		Use:   "cast <imdbID>",
		Short: "Scrape the cast list of a title",
		Args:  cobra.ExactArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			rt.warmKnownFor = warm
			lib, err := rt.library()
			if err != nil {
				return err
			}
			if store {
				if err := rt.cfg.Validate(); err != nil {
					return err
				}
				report, err := lib.ImportCast(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			}

			actors, err := lib.FetchCast(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, a := range actors {
				fmt.Fprintln(cmd.OutOrStdout(), a.Info())
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&store, "store", false, "store each actor along with their known-for movie")
	cmd.Flags().BoolVar(&warm, "warm-known-for", false, "with --store, also cache details for every known-for title")
	return cmd
}

func newImportCmd(rt *deps) *cobra.Command {
	var warm bool
	cmd := &cobra.Command{
		Use:         "import <title>",
		Short:       "Store search results for a title and the cast of the first match",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{needsOMDb: "true"},
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			rt.warmKnownFor = warm
			lib, err := rt.library()
			if err != nil {
				return err
			}
			movies, err := lib.FetchMovieList(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range movies {
				fmt.Fprintln(out, m.Info())
			}
			if len(movies) == 0 {
				return nil
			}

			report, err := lib.ImportCast(cmd.Context(), movies[0].IMDBID)
			if err != nil {
				return err
			}
			printReport(out, report)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&warm, "warm-known-for", false, "also cache details for every known-for title")
	return cmd
}

func newWatchCmd(rt *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <title>",
		Short: "Add a stored movie to the watch list",
		Args:  cobra.MinimumNArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			lib, err := rt.library()
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			_, created, err := lib.InsertWatchlistEntry(models.Movie{Title: title})
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "added %s to the watch list\n", title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already on the watch list\n", title)
			}
			return nil
		}),
	}
}

func newListCmd(rt *deps) *cobra.Command {
	var movies bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the watch list, or every stored movie with --movies",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			lib, err := rt.library()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if movies {
				all, err := lib.Movies().GetAll()
				if err != nil {
					return err
				}
				for _, m := range all {
					fmt.Fprintln(out, m.Info())
				}
				return nil
			}

			entries, err := lib.WatchList().GetAll()
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s (%d) %.1f\n", e.Title, e.Year, e.Rating)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&movies, "movies", false, "list stored movies instead of the watch list")
	return cmd
}

func newServeCmd(rt *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored library over HTTP",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			lib, err := rt.library()
			if err != nil {
				return err
			}

			app := &App{library: lib, logger: rt.logger.Named("http")}
			server := &http.Server{
				Addr:         rt.cfg.Server.HTTPAddr,
				Handler:      app.router(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				rt.logger.Info("server starting", zap.String("addr", server.Addr))
				errc <- server.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			rt.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}),
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}

func newCacheCmd(rt *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the payload cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached payload",
			Args:  cobra.NoArgs,
			RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
				if err := rt.store.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", rt.store.Path())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show the cache location and entry count",
			Args:  cobra.NoArgs,
			RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", rt.store.Path(), rt.store.Len())
				return nil
			}),
		},
	)
	return cmd
}

func printReport(out io.Writer, report library.ImportReport) {
	for _, name := range report.Inserted {
		fmt.Fprintf(out, "stored %s\n", name)
	}
	for _, name := range report.Existing {
		fmt.Fprintf(out, "already stored %s\n", name)
	}
	for _, rec := range report.Skipped {
		fmt.Fprintf(out, "skipped %s: %v\n", rec.Name, rec.Err)
	}
	for _, rec := range report.Failed {
		fmt.Fprintf(out, "failed %s: %v\n", rec.Name, rec.Err)
	}
}
