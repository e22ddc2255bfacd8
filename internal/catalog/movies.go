package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lepinkainen/bookreel/internal/cache"
	apperrors "github.com/lepinkainen/bookreel/internal/errors"
	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/themes"
	"github.com/lepinkainen/bookreel/internal/tmdb"
)

// MovieDetails resolves a movie by TMDB id, including its director.
func (a *Adapters) MovieDetails(ctx context.Context, id int) Result[media.Item] {
	if a.movies == nil {
		return Transient[media.Item](fmt.Errorf("tmdb: %w", ErrNotConfigured))
	}

	item, err := cache.GetOrCompute(a.cache, OpMovieDetails, []any{id}, nil, a.cfg.MovieTTL, func() (*media.Item, error) {
		details, err := call(ctx, a, tmdb.CatalogName, OpMovieDetails, func(ctx context.Context) (*tmdb.MovieDetails, error) {
			return a.movies.GetMovieDetails(ctx, id)
		})
		if apperrors.IsNotFoundError(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		item := a.movieItem(details.Movie, nil)
		if directors := details.Directors(); len(directors) > 0 {
			item.Creator = directors[0].Name
			item.CreatorKey = strconv.Itoa(directors[0].ID)
		}
		patched := a.curated.Patch(item).WithDefaults()
		return &patched, nil
	})
	return detail(item, err)
}

// SearchMovies runs a free-text movie search.
func (a *Adapters) SearchMovies(ctx context.Context, query string, limit int) Result[[]media.Item] {
	return a.movieList(ctx, OpSearchMovies, []any{query, limit}, func(ctx context.Context) ([]tmdb.Movie, error) {
		return a.movies.SearchMovies(ctx, query, 0, limit)
	})
}

// MoviesByTitle lists movies whose title matches.
func (a *Adapters) MoviesByTitle(ctx context.Context, title string, limit int) Result[[]media.Item] {
	return a.movieList(ctx, OpMoviesByTitle, []any{title, limit}, func(ctx context.Context) ([]tmdb.Movie, error) {
		return a.movies.SearchMovies(ctx, title, 0, limit)
	})
}

// MoviesByTheme lists movies for a theme: a genre discover when the theme
// names a TMDB genre, a title search otherwise.
func (a *Adapters) MoviesByTheme(ctx context.Context, theme string, limit int) Result[[]media.Item] {
	return a.movieList(ctx, OpMoviesByTheme, []any{theme, limit}, func(ctx context.Context) ([]tmdb.Movie, error) {
		genreID, ok, err := a.movies.GenreID(ctx, theme)
		if err != nil {
			return nil, err
		}
		if ok {
			return a.movies.DiscoverByGenre(ctx, genreID, limit)
		}
		return a.movies.SearchMovies(ctx, theme, 0, limit)
	})
}

// MoviesByDirector lists movies directed by a TMDB person, most popular first.
// Items carry the director as creator.
func (a *Adapters) MoviesByDirector(ctx context.Context, directorID int, director string, limit int) Result[[]media.Item] {
	if a.movies == nil {
		return Transient[[]media.Item](fmt.Errorf("tmdb: %w", ErrNotConfigured))
	}

	items, err := cache.GetOrCompute(a.cache, OpMoviesByDirector, []any{directorID, limit}, nil, a.cfg.RequestTTL, func() ([]media.Item, error) {
		credits, err := call(ctx, a, tmdb.CatalogName, OpMoviesByDirector, func(ctx context.Context) ([]tmdb.CrewCredit, error) {
			return a.movies.DirectedMovies(ctx, directorID)
		})
		if err != nil {
			return nil, err
		}

		movies := make([]tmdb.Movie, 0, min(len(credits), limit))
		for _, c := range credits {
			if len(movies) >= limit {
				break
			}
			movies = append(movies, c.Movie)
		}
		return a.movieItems(ctx, movies, func(item *media.Item) {
			item.Creator = director
			item.CreatorKey = strconv.Itoa(directorID)
		})
	})
	return list(items, err)
}

// SimilarMovies lists movies TMDB considers similar to id.
func (a *Adapters) SimilarMovies(ctx context.Context, id int, limit int) Result[[]media.Item] {
	return a.movieList(ctx, OpSimilarMovies, []any{id, limit}, func(ctx context.Context) ([]tmdb.Movie, error) {
		return a.movies.SimilarMovies(ctx, id, limit)
	})
}

func (a *Adapters) movieList(ctx context.Context, op string, args []any, fetch func(context.Context) ([]tmdb.Movie, error)) Result[[]media.Item] {
	if a.movies == nil {
		return Transient[[]media.Item](fmt.Errorf("tmdb: %w", ErrNotConfigured))
	}

	items, err := cache.GetOrCompute(a.cache, op, args, nil, a.cfg.RequestTTL, func() ([]media.Item, error) {
		movies, err := call(ctx, a, tmdb.CatalogName, op, fetch)
		if err != nil {
			return nil, err
		}
		return a.movieItems(ctx, movies, nil)
	})
	return list(items, err)
}

// movieItems converts list results, resolving genre ids through the genre list.
// A failed genre lookup fails the whole list so a genre-less copy is never cached.
func (a *Adapters) movieItems(ctx context.Context, movies []tmdb.Movie, adjust func(*media.Item)) ([]media.Item, error) {
	items := make([]media.Item, 0, len(movies))
	for _, m := range movies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m.ID <= 0 || m.Title == "" {
			continue
		}
		genres, err := call(ctx, a, tmdb.CatalogName, "genre_list", func(ctx context.Context) ([]string, error) {
			return a.movies.GenreNames(ctx, m.GenreIDs)
		})
		switch {
		case err == nil:
		case apperrors.IsNotFoundError(err):
			slog.Debug("No genres for movie", "movie_id", m.ID)
		default:
			return nil, fmt.Errorf("genres for movie %d: %w", m.ID, err)
		}

		item := a.movieItem(m, genres)
		if adjust != nil {
			adjust(&item)
		}
		items = append(items, item.WithDefaults())
	}
	return items, nil
}

// movieItem builds an item from a TMDB movie. Inline genres win over resolved ones.
func (a *Adapters) movieItem(m tmdb.Movie, genres []string) media.Item {
	if len(m.Genres) > 0 {
		genres = make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			genres = append(genres, g.Name)
		}
	}

	return media.Item{
		ID:          media.MovieID(m.ID),
		Type:        media.Movie,
		Title:       m.Title,
		Year:        media.YearFromDate(m.ReleaseDate),
		Description: m.Overview,
		ImageURL:    a.movies.ImageURL(m.PosterPath),
		Genres:      themes.NormalizeAll(genres),
		ScorePct:    m.ScorePct(),
		Source:      media.SourceTMDB,
	}
}
