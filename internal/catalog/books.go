package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lepinkainen/bookreel/internal/cache"
	apperrors "github.com/lepinkainen/bookreel/internal/errors"
	"github.com/lepinkainen/bookreel/internal/googlebooks"
	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/openlibrary"
	"github.com/lepinkainen/bookreel/internal/themes"
)

// maxGenres bounds the genres kept per item; OpenLibrary works can carry hundreds of subjects.
const maxGenres = 12

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// bookQuery selects what a book search matches on. Empty fields are ignored.
type bookQuery struct {
	Text    string
	Title   string
	Author  string
	Subject string
}

// bookSource is a book catalog. Sources are queried in registration order,
// later ones serving as fallbacks.
type bookSource interface {
	Name() string
	Search(ctx context.Context, q bookQuery, limit int) ([]media.Item, error)
	Details(ctx context.Context, key string) (media.Item, error)
}

// BookDetails resolves a book by its catalog key. source is media.SourceOpenLibrary
// (key "/works/...") or media.SourceGoogleBooks (key is the volume id).
func (a *Adapters) BookDetails(ctx context.Context, key, source string) Result[media.Item] {
	src := a.bookSource(source)
	if src == nil {
		return Transient[media.Item](fmt.Errorf("%s: %w", source, ErrNotConfigured))
	}

	item, err := cache.GetOrCompute(a.cache, OpBookDetails, []any{key, source}, nil, a.cfg.BookTTL, func() (*media.Item, error) {
		item, err := call(ctx, a, src.Name(), OpBookDetails, func(ctx context.Context) (media.Item, error) {
			return src.Details(ctx, key)
		})
		if apperrors.IsNotFoundError(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		patched := a.curated.Patch(item).WithDefaults()
		return &patched, nil
	})
	return detail(item, err)
}

// SearchBooks runs a free-text search, falling back to later sources when a
// source fails.
func (a *Adapters) SearchBooks(ctx context.Context, query string, limit int) Result[[]media.Item] {
	return a.searchBooks(ctx, OpSearchBooks, bookQuery{Text: query}, limit)
}

// BooksByAuthor lists works by an author name.
func (a *Adapters) BooksByAuthor(ctx context.Context, author string, limit int) Result[[]media.Item] {
	return a.searchBooks(ctx, OpBooksByAuthor, bookQuery{Author: author}, limit)
}

// BooksByTitle lists books whose title matches.
func (a *Adapters) BooksByTitle(ctx context.Context, title string, limit int) Result[[]media.Item] {
	return a.searchBooks(ctx, OpBooksByTitle, bookQuery{Title: title}, limit)
}

// BooksBySubject lists books for a subject from one specific source.
func (a *Adapters) BooksBySubject(ctx context.Context, subject, source string, limit int) Result[[]media.Item] {
	src := a.bookSource(source)
	if src == nil {
		return Transient[[]media.Item](fmt.Errorf("%s: %w", source, ErrNotConfigured))
	}

	items, err := cache.GetOrCompute(a.cache, OpBooksBySubject, []any{subject, source, limit}, nil, a.cfg.RequestTTL, func() ([]media.Item, error) {
		return call(ctx, a, src.Name(), OpBooksBySubject, func(ctx context.Context) ([]media.Item, error) {
			return src.Search(ctx, bookQuery{Subject: subject}, limit)
		})
	})
	return list(items, err)
}

func (a *Adapters) searchBooks(ctx context.Context, op string, q bookQuery, limit int) Result[[]media.Item] {
	if len(a.books) == 0 {
		return Transient[[]media.Item](fmt.Errorf("books: %w", ErrNotConfigured))
	}

	items, err := cache.GetOrCompute(a.cache, op, []any{q.Text, q.Title, q.Author, q.Subject, limit}, nil, a.cfg.RequestTTL, func() ([]media.Item, error) {
		var lastErr error
		for _, src := range a.books {
			items, err := call(ctx, a, src.Name(), op, func(ctx context.Context) ([]media.Item, error) {
				return src.Search(ctx, q, limit)
			})
			if err == nil {
				return items, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Debug("Book source failed, trying next", "source", src.Name(), "op", op, "error", err)
			lastErr = err
		}
		return nil, lastErr
	})
	return list(items, err)
}

func (a *Adapters) bookSource(name string) bookSource {
	for _, src := range a.books {
		if src.Name() == name {
			return src
		}
	}
	return nil
}

// bookGenres normalizes catalog subjects into item genres.
func bookGenres(subjects []string) []string {
	genres := themes.NormalizeAll(themes.FilterGeneric(subjects))
	if len(genres) > maxGenres {
		genres = genres[:maxGenres]
	}
	return genres
}

type openLibrarySource struct {
	api OpenLibraryAPI
}

func (s *openLibrarySource) Name() string { return openlibrary.CatalogName }

func (s *openLibrarySource) Search(ctx context.Context, q bookQuery, limit int) ([]media.Item, error) {
	docs, err := s.api.Search(ctx, openlibrary.Query(q), limit)
	if err != nil {
		return nil, err
	}

	items := make([]media.Item, 0, len(docs))
	for _, doc := range docs {
		if !strings.HasPrefix(doc.Key, "/works/") || doc.Title == "" {
			continue
		}
		item := media.Item{
			ID:       media.OpenLibraryID(doc.Key),
			Type:     media.Book,
			Title:    doc.Title,
			Year:     media.YearFromInt(doc.FirstPublishYear),
			ImageURL: s.api.CoverURL(doc.CoverID),
			Genres:   bookGenres(doc.Subject),
			Source:   media.SourceOpenLibrary,
		}
		if len(doc.AuthorName) > 0 {
			item.Creator = doc.AuthorName[0]
		}
		if len(doc.AuthorKey) > 0 {
			item.CreatorKey = doc.AuthorKey[0]
		}
		items = append(items, item.WithDefaults())
	}
	return items, nil
}

func (s *openLibrarySource) Details(ctx context.Context, key string) (media.Item, error) {
	work, err := s.api.Work(ctx, key)
	if err != nil {
		return media.Item{}, err
	}

	item := media.Item{
		ID:          media.OpenLibraryID(key),
		Type:        media.Book,
		Title:       work.Title,
		Year:        media.YearFromDate(work.FirstPublishDate),
		Description: string(work.Description),
		ImageURL:    s.api.CoverURL(work.CoverID()),
		Genres:      bookGenres(work.Subjects),
		Source:      media.SourceOpenLibrary,
	}

	if authors := work.AuthorKeys(); len(authors) > 0 {
		item.CreatorKey = strings.TrimPrefix(authors[0], "/authors/")
		author, err := s.api.Author(ctx, authors[0])
		switch {
		case err == nil:
			item.Creator = author.Name
		case ctx.Err() != nil:
			return media.Item{}, ctx.Err()
		case apperrors.IsNotFoundError(err), apperrors.IsMalformedResponse(err):
			// Missing author data is substituted, not fatal
			slog.Debug("Author unavailable", "key", authors[0], "error", err)
		default:
			return media.Item{}, fmt.Errorf("author %s: %w", authors[0], err)
		}
	}

	return item, nil
}

type googleBooksSource struct {
	api GoogleBooksAPI
}

func (s *googleBooksSource) Name() string { return googlebooks.CatalogName }

func (s *googleBooksSource) Search(ctx context.Context, q bookQuery, limit int) ([]media.Item, error) {
	volumes, err := s.api.Search(ctx, googlebooks.Query(q), limit)
	if err != nil {
		return nil, err
	}

	items := make([]media.Item, 0, len(volumes))
	for _, v := range volumes {
		if v.ID == "" || v.VolumeInfo.Title == "" {
			continue
		}
		items = append(items, volumeItem(v))
	}
	return items, nil
}

func (s *googleBooksSource) Details(ctx context.Context, key string) (media.Item, error) {
	v, err := s.api.Volume(ctx, key)
	if err != nil {
		return media.Item{}, err
	}
	return volumeItem(*v), nil
}

func volumeItem(v googlebooks.Volume) media.Item {
	info := v.VolumeInfo
	item := media.Item{
		ID:          media.GoogleBooksID(v.ID),
		Type:        media.Book,
		Title:       info.Title,
		Year:        media.YearFromDate(info.PublishedDate),
		Description: strings.Join(strings.Fields(htmlTag.ReplaceAllString(info.Description, " ")), " "),
		ImageURL:    info.CoverURL(),
		Genres:      bookGenres(info.Subjects()),
		Source:      media.SourceGoogleBooks,
	}
	if len(info.Authors) > 0 {
		item.Creator = info.Authors[0]
	}
	return item.WithDefaults()
}
