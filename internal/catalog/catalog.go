// Package catalog adapts the OpenLibrary, Google Books and TMDB clients into
// normalized media items. Every call goes through the shared result cache, a
// per-call timeout and a per-catalog circuit breaker.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/lepinkainen/bookreel/internal/cache"
	"github.com/lepinkainen/bookreel/internal/curated"
	apperrors "github.com/lepinkainen/bookreel/internal/errors"
	"github.com/lepinkainen/bookreel/internal/googlebooks"
	"github.com/lepinkainen/bookreel/internal/metrics"
	"github.com/lepinkainen/bookreel/internal/openlibrary"
	"github.com/lepinkainen/bookreel/internal/tmdb"
)

// Cache operation names.
const (
	OpBookDetails      = "book_details"
	OpMovieDetails     = "movie_details"
	OpSearchBooks      = "search_books"
	OpSearchMovies     = "search_movies"
	OpBooksByAuthor    = "books_by_author"
	OpBooksBySubject   = "books_by_subject"
	OpBooksByTitle     = "books_by_title"
	OpMoviesByTitle    = "movies_by_title"
	OpMoviesByTheme    = "movies_by_theme"
	OpMoviesByDirector = "movies_by_director"
	OpSimilarMovies    = "similar_movies"
)

// ErrNotConfigured is returned for calls to a catalog that has no client.
var ErrNotConfigured = errors.New("catalog not configured")

// OpenLibraryAPI is the subset of the OpenLibrary client the adapters use.
type OpenLibraryAPI interface {
	Search(ctx context.Context, q openlibrary.Query, limit int) ([]openlibrary.SearchDoc, error)
	Work(ctx context.Context, key string) (*openlibrary.Work, error)
	Author(ctx context.Context, key string) (*openlibrary.Author, error)
	CoverURL(coverID int) string
}

// GoogleBooksAPI is the subset of the Google Books client the adapters use.
type GoogleBooksAPI interface {
	Search(ctx context.Context, q googlebooks.Query, limit int) ([]googlebooks.Volume, error)
	Volume(ctx context.Context, id string) (*googlebooks.Volume, error)
}

// MovieAPI is the subset of the TMDB client the adapters use.
type MovieAPI interface {
	SearchMovies(ctx context.Context, query string, year int, limit int) ([]tmdb.Movie, error)
	DiscoverByGenre(ctx context.Context, genreID int, limit int) ([]tmdb.Movie, error)
	SimilarMovies(ctx context.Context, movieID int, limit int) ([]tmdb.Movie, error)
	GetMovieDetails(ctx context.Context, movieID int) (*tmdb.MovieDetails, error)
	DirectedMovies(ctx context.Context, personID int) ([]tmdb.CrewCredit, error)
	GenreNames(ctx context.Context, ids []int) ([]string, error)
	GenreID(ctx context.Context, name string) (int, bool, error)
	ImageURL(path string) string
}

// Config holds the adapter timeouts, TTLs and breaker settings.
type Config struct {
	Timeout          time.Duration
	RequestTTL       time.Duration
	BookTTL          time.Duration
	MovieTTL         time.Duration
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

// DefaultConfig returns the default adapter settings.
func DefaultConfig() Config {
	return Config{
		Timeout:          10 * time.Second,
		RequestTTL:       cache.DefaultRequestTTL,
		BookTTL:          cache.DefaultBookTTL,
		MovieTTL:         cache.DefaultMovieTTL,
		BreakerFailures:  5,
		BreakerOpenDelay: 30 * time.Second,
	}
}

// Adapters turns catalog lookups into normalized media items.
type Adapters struct {
	cache    *cache.Cache
	cfg      Config
	curated  *curated.Table
	books    []bookSource
	movies   MovieAPI
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// Option is a functional option for configuring Adapters.
type Option func(*Adapters)

// WithOpenLibrary registers OpenLibrary as the primary book source.
func WithOpenLibrary(api OpenLibraryAPI) Option {
	return func(a *Adapters) {
		if api != nil {
			a.books = append(a.books, &openLibrarySource{api: api})
		}
	}
}

// WithGoogleBooks registers Google Books as the fallback book source.
func WithGoogleBooks(api GoogleBooksAPI) Option {
	return func(a *Adapters) {
		if api != nil {
			a.books = append(a.books, &googleBooksSource{api: api})
		}
	}
}

// WithTMDB registers the movie catalog.
func WithTMDB(api MovieAPI) Option {
	return func(a *Adapters) {
		a.movies = api
	}
}

// WithCurated sets the table used to patch detail records.
func WithCurated(t *curated.Table) Option {
	return func(a *Adapters) {
		a.curated = t
	}
}

// New creates the adapters. A nil cache disables caching.
func New(c *cache.Cache, cfg Config, opts ...Option) *Adapters {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RequestTTL <= 0 {
		cfg.RequestTTL = defaults.RequestTTL
	}
	if cfg.BookTTL <= 0 {
		cfg.BookTTL = defaults.BookTTL
	}
	if cfg.MovieTTL <= 0 {
		cfg.MovieTTL = defaults.MovieTTL
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerOpenDelay <= 0 {
		cfg.BreakerOpenDelay = defaults.BreakerOpenDelay
	}

	a := &Adapters{
		cache:    c,
		cfg:      cfg,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, name := range []string{openlibrary.CatalogName, googlebooks.CatalogName, tmdb.CatalogName} {
		a.breakers[name] = newBreaker(name, cfg)
	}
	return a
}

func newBreaker(name string, cfg Config) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Catalog circuit breaker changed state", "catalog", name, "from", from.String(), "to", to.String())
			metrics.RecordBreakerTransition(name, from, to)
		},
		// Missing records and caller cancellation say nothing about catalog health
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.IsNotFoundError(err) || errors.Is(err, context.Canceled)
		},
	})
}

// call runs fn against catalog under the per-call timeout and the catalog's breaker.
// NotFound errors are returned untouched; everything else is logged and counted.
func call[T any](ctx context.Context, a *Adapters, catalogName, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	v, err := a.breakers[catalogName].Execute(func() (any, error) {
		return fn(callCtx)
	})
	metrics.RecordCatalogCall(catalogName, op, time.Since(start))

	if err != nil {
		if apperrors.IsNotFoundError(err) || ctx.Err() != nil {
			return zero, err
		}
		kind := failureKind(err)
		slog.Warn("Catalog call failed", "catalog", catalogName, "op", op, "kind", kind, "error", err)
		metrics.RecordCatalogFailure(catalogName, op, kind)
		return zero, err
	}

	typed, _ := v.(T)
	return typed, nil
}

func failureKind(err error) string {
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.FailureTimeout
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return metrics.FailureBreakerOpen
	case apperrors.IsRateLimitError(err):
		return metrics.FailureRateLimited
	case apperrors.IsMalformedResponse(err):
		return metrics.FailureMalformed
	case apperrors.IsCatalogError(err), errors.As(err, &urlErr):
		return metrics.FailureUnavailable
	default:
		return metrics.FailureOther
	}
}

// detail converts a cached detail lookup into a Result. A nil item is a cached NotFound.
func detail[T any](v *T, err error) Result[T] {
	switch {
	case err != nil:
		return Transient[T](err)
	case v == nil:
		return NotFound[T]()
	default:
		return OK(*v)
	}
}

// list converts a cached list lookup into a Result.
func list[T any](v []T, err error) Result[[]T] {
	if err != nil {
		return Transient[[]T](err)
	}
	return OK(v)
}
