package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookreel/internal/cache"
	"github.com/lepinkainen/bookreel/internal/catalog"
	"github.com/lepinkainen/bookreel/internal/config"
	"github.com/lepinkainen/bookreel/internal/curated"
	"github.com/lepinkainen/bookreel/internal/datastore"
	"github.com/lepinkainen/bookreel/internal/googlebooks"
	"github.com/lepinkainen/bookreel/internal/metrics"
	"github.com/lepinkainen/bookreel/internal/openlibrary"
	"github.com/lepinkainen/bookreel/internal/ratelimit"
	"github.com/lepinkainen/bookreel/internal/recommend"
	"github.com/lepinkainen/bookreel/internal/server"
	"github.com/lepinkainen/bookreel/internal/tmdb"
)

// app is the wired service graph shared by every command.
type app struct {
	svc   server.Recommender
	cache *cache.Cache
	log   *datastore.RecommendationLog
}

func (a *app) Close() {
	if a.log == nil {
		return
	}
	if err := a.log.Close(); err != nil {
		slog.Warn("Failed to close recommendation log", "error", err)
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	cacheOpts := []cache.Option{cache.WithObserver(metrics.CacheObserver{})}
	if cfg.Cache.SingleFlight {
		cacheOpts = append(cacheOpts, cache.WithSingleFlight())
	}
	c := cache.New(cacheOpts...)

	table, err := curated.Load(cfg.Curated.ExtraFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load curated overrides: %w", err)
	}

	catalogOpts := []catalog.Option{
		catalog.WithCurated(table),
		catalog.WithOpenLibrary(openlibrary.NewClient(
			openlibrary.WithRateLimiter(ratelimit.New(openlibrary.CatalogName, cfg.Catalog.OpenLibraryRPS)),
		)),
	}
	if cfg.GoogleBooks.Enabled {
		catalogOpts = append(catalogOpts, catalog.WithGoogleBooks(googlebooks.NewClient(
			cfg.GoogleBooks.APIKey,
			googlebooks.WithRateLimiter(ratelimit.New(googlebooks.CatalogName, cfg.Catalog.GoogleBooksRPS)),
		)))
	}
	if cfg.TMDBConfigured() {
		catalogOpts = append(catalogOpts, catalog.WithTMDB(tmdb.NewClient(
			cfg.TMDB.APIKey,
			tmdb.WithReadAccessToken(cfg.TMDB.ReadAccessToken),
			tmdb.WithRateLimiter(ratelimit.New(tmdb.CatalogName, cfg.Catalog.TMDBRPS)),
		)))
	} else {
		slog.Warn("TMDB credentials missing, movie lookups disabled")
	}

	adapters := catalog.New(c, catalog.Config{
		Timeout:          cfg.Catalog.Timeout,
		RequestTTL:       cfg.Cache.RequestTTL,
		BookTTL:          cfg.Cache.BookTTL,
		MovieTTL:         cfg.Cache.MovieTTL,
		BreakerFailures:  cfg.Catalog.BreakerFailures,
		BreakerOpenDelay: cfg.Catalog.BreakerOpenDelay,
	}, catalogOpts...)

	a := &app{cache: c}
	svcOpts := []recommend.ServiceOption{recommend.WithSearchLimit(cfg.SearchLimit)}
	if cfg.Datastore.Enabled {
		log, err := openRecommendationLog(ctx, cfg.Datastore)
		if err != nil {
			return nil, err
		}
		a.log = log
		svcOpts = append(svcOpts, recommend.WithRecorder(log))
	}

	a.svc = recommend.NewService(adapters, table, svcOpts...)
	slog.Debug("Application wired",
		"curated_entries", table.Len(),
		"googlebooks", cfg.GoogleBooks.Enabled,
		"tmdb", cfg.TMDBConfigured(),
		"datastore", cfg.Datastore.Enabled)
	return a, nil
}

func openRecommendationLog(ctx context.Context, cfg config.DatastoreConfig) (*datastore.RecommendationLog, error) {
	var store datastore.Store
	switch cfg.Mode {
	case "remote":
		store = datastore.NewDatasetteClient(cfg.RemoteURL, cfg.Database, cfg.APIToken)
	default:
		store = datastore.NewSQLiteStore(cfg.DBFile)
	}

	log, err := datastore.NewRecommendationLog(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s datastore: %w", cfg.Mode, err)
	}
	return log, nil
}
