package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	apperrors "github.com/lepinkainen/bookreel/internal/errors"
	"github.com/lepinkainen/bookreel/internal/googlebooks"
	"github.com/lepinkainen/bookreel/internal/openlibrary"
	"github.com/lepinkainen/bookreel/internal/tmdb"
)

type fakeOpenLibrary struct {
	docs      []openlibrary.SearchDoc
	works     map[string]*openlibrary.Work
	authors   map[string]*openlibrary.Author
	searchErr error
	workErr   error
	authorErr error

	searches atomic.Int32
	workHits atomic.Int32
	lastQ    openlibrary.Query
}

func (f *fakeOpenLibrary) Search(_ context.Context, q openlibrary.Query, limit int) ([]openlibrary.SearchDoc, error) {
	f.searches.Add(1)
	f.lastQ = q
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.docs[:min(limit, len(f.docs))], nil
}

func (f *fakeOpenLibrary) Work(ctx context.Context, key string) (*openlibrary.Work, error) {
	f.workHits.Add(1)
	if f.workErr != nil {
		return nil, f.workErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, ok := f.works[key]
	if !ok {
		return nil, apperrors.NewNotFoundError(openlibrary.CatalogName, key)
	}
	return w, nil
}

func (f *fakeOpenLibrary) Author(_ context.Context, key string) (*openlibrary.Author, error) {
	if f.authorErr != nil {
		return nil, f.authorErr
	}
	a, ok := f.authors[key]
	if !ok {
		return nil, apperrors.NewNotFoundError(openlibrary.CatalogName, key)
	}
	return a, nil
}

func (f *fakeOpenLibrary) CoverURL(id int) string {
	if id <= 0 {
		return ""
	}
	return fmt.Sprintf("https://covers.example/%d.jpg", id)
}

type fakeGoogleBooks struct {
	volumes  []googlebooks.Volume
	searches atomic.Int32
}

func (f *fakeGoogleBooks) Search(_ context.Context, _ googlebooks.Query, limit int) ([]googlebooks.Volume, error) {
	f.searches.Add(1)
	return f.volumes[:min(limit, len(f.volumes))], nil
}

func (f *fakeGoogleBooks) Volume(_ context.Context, id string) (*googlebooks.Volume, error) {
	for i := range f.volumes {
		if f.volumes[i].ID == id {
			return &f.volumes[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(googlebooks.CatalogName, id)
}

type fakeMovies struct {
	details    map[int]*tmdb.MovieDetails
	search     []tmdb.Movie
	discover   []tmdb.Movie
	similar    []tmdb.Movie
	directed   []tmdb.CrewCredit
	genres     map[int]string
	detailsErr error
	block      bool
	onSimilar  func()

	// genreFailures fails that many GenreNames calls before answering
	genreFailures atomic.Int32

	detailCalls   atomic.Int32
	discoverCalls atomic.Int32
	searchCalls   atomic.Int32
}

func (f *fakeMovies) SearchMovies(_ context.Context, _ string, _ int, limit int) ([]tmdb.Movie, error) {
	f.searchCalls.Add(1)
	return f.search[:min(limit, len(f.search))], nil
}

func (f *fakeMovies) DiscoverByGenre(_ context.Context, _ int, limit int) ([]tmdb.Movie, error) {
	f.discoverCalls.Add(1)
	return f.discover[:min(limit, len(f.discover))], nil
}

func (f *fakeMovies) SimilarMovies(_ context.Context, _ int, limit int) ([]tmdb.Movie, error) {
	if f.onSimilar != nil {
		f.onSimilar()
	}
	return f.similar[:min(limit, len(f.similar))], nil
}

func (f *fakeMovies) GetMovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error) {
	f.detailCalls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	d, ok := f.details[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(tmdb.CatalogName, "movie")
	}
	return d, nil
}

func (f *fakeMovies) DirectedMovies(_ context.Context, _ int) ([]tmdb.CrewCredit, error) {
	return f.directed, nil
}

func (f *fakeMovies) GenreNames(_ context.Context, ids []int) ([]string, error) {
	if f.genreFailures.Load() > 0 {
		f.genreFailures.Add(-1)
		return nil, apperrors.NewCatalogError(tmdb.CatalogName, 503, "genre list unavailable")
	}
	var out []string
	for _, id := range ids {
		if name, ok := f.genres[id]; ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func (f *fakeMovies) GenreID(_ context.Context, name string) (int, bool, error) {
	for id, n := range f.genres {
		if strings.EqualFold(n, name) {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (f *fakeMovies) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://image.example/w500" + path
}
