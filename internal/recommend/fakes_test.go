package recommend

import (
	"context"
	"errors"
	"sync"

	"github.com/lepinkainen/bookreel/internal/catalog"
	"github.com/lepinkainen/bookreel/internal/media"
)

var errCatalogDown = errors.New("catalog down")

// fakeCatalog serves canned lists keyed by query. Queries listed in failing
// come back Transient; unknown queries return an empty list.
type fakeCatalog struct {
	mu sync.Mutex

	books  map[string]media.Item // by "source|key"
	movies map[int]media.Item

	search         map[string][]media.Item
	byAuthor       map[string][]media.Item
	bySubject      map[string][]media.Item // by "source|subject"
	booksByTitle   map[string][]media.Item
	moviesByTitle  map[string][]media.Item
	moviesByTheme  map[string][]media.Item
	byDirector     map[int][]media.Item
	similar        map[int][]media.Item
	failing        map[string]bool
	onCall         func(op string)
	calls          []string
	detailsFailing bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		books:         map[string]media.Item{},
		movies:        map[int]media.Item{},
		search:        map[string][]media.Item{},
		byAuthor:      map[string][]media.Item{},
		bySubject:     map[string][]media.Item{},
		booksByTitle:  map[string][]media.Item{},
		moviesByTitle: map[string][]media.Item{},
		moviesByTheme: map[string][]media.Item{},
		byDirector:    map[int][]media.Item{},
		similar:       map[int][]media.Item{},
		failing:       map[string]bool{},
	}
}

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
}

func (f *fakeCatalog) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeCatalog) list(call string, items []media.Item, limit int) catalog.Result[[]media.Item] {
	f.record(call)
	if f.failing[call] {
		return catalog.Transient[[]media.Item](errCatalogDown)
	}
	return catalog.OK(items[:min(limit, len(items))])
}

func (f *fakeCatalog) BookDetails(_ context.Context, key, source string) catalog.Result[media.Item] {
	f.record("book_details:" + source + "|" + key)
	if f.detailsFailing {
		return catalog.Transient[media.Item](errCatalogDown)
	}
	item, ok := f.books[source+"|"+key]
	if !ok {
		return catalog.NotFound[media.Item]()
	}
	return catalog.OK(item)
}

func (f *fakeCatalog) MovieDetails(_ context.Context, id int) catalog.Result[media.Item] {
	f.record("movie_details")
	if f.detailsFailing {
		return catalog.Transient[media.Item](errCatalogDown)
	}
	item, ok := f.movies[id]
	if !ok {
		return catalog.NotFound[media.Item]()
	}
	return catalog.OK(item)
}

func (f *fakeCatalog) SearchBooks(_ context.Context, query string, limit int) catalog.Result[[]media.Item] {
	return f.list("search_books:"+query, f.search["book|"+query], limit)
}

func (f *fakeCatalog) SearchMovies(_ context.Context, query string, limit int) catalog.Result[[]media.Item] {
	return f.list("search_movies:"+query, f.search["movie|"+query], limit)
}

func (f *fakeCatalog) BooksByAuthor(_ context.Context, author string, limit int) catalog.Result[[]media.Item] {
	return f.list("author:"+author, f.byAuthor[author], limit)
}

func (f *fakeCatalog) BooksBySubject(_ context.Context, subject, source string, limit int) catalog.Result[[]media.Item] {
	key := source + "|" + subject
	return f.list("subject:"+key, f.bySubject[key], limit)
}

func (f *fakeCatalog) BooksByTitle(_ context.Context, title string, limit int) catalog.Result[[]media.Item] {
	return f.list("book_title:"+title, f.booksByTitle[title], limit)
}

func (f *fakeCatalog) MoviesByTitle(_ context.Context, title string, limit int) catalog.Result[[]media.Item] {
	return f.list("movie_title:"+title, f.moviesByTitle[title], limit)
}

func (f *fakeCatalog) MoviesByTheme(_ context.Context, theme string, limit int) catalog.Result[[]media.Item] {
	return f.list("movie_theme:"+theme, f.moviesByTheme[theme], limit)
}

func (f *fakeCatalog) MoviesByDirector(_ context.Context, id int, _ string, limit int) catalog.Result[[]media.Item] {
	return f.list("director", f.byDirector[id], limit)
}

func (f *fakeCatalog) SimilarMovies(_ context.Context, id int, limit int) catalog.Result[[]media.Item] {
	return f.list("similar", f.similar[id], limit)
}

func book(id, title string, genres ...string) media.Item {
	return media.Item{ID: id, Type: media.Book, Title: title, Creator: media.Unknown, Year: media.Unknown, Genres: genres, Source: media.SourceOpenLibrary}
}

func movie(id, title string, score int, genres ...string) media.Item {
	return media.Item{ID: id, Type: media.Movie, Title: title, Creator: media.Unknown, Year: media.Unknown, Genres: genres, ScorePct: score, Source: media.SourceTMDB}
}

type recorderFunc func(ctx context.Context, selected media.Item, recs []Recommendation) error

func (f recorderFunc) RecordRecommendations(ctx context.Context, selected media.Item, recs []Recommendation) error {
	return f(ctx, selected, recs)
}
