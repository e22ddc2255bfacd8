package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/bookreel/internal/catalog"
	"github.com/lepinkainen/bookreel/internal/curated"
	apperrors "github.com/lepinkainen/bookreel/internal/errors"
	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/metrics"
)

// DefaultSearchLimit is the number of search results returned when none is requested.
const DefaultSearchLimit = 10

// ErrInvalidType is returned for a search type other than book or movie.
var ErrInvalidType = errors.New("type must be book or movie")

// Recorder persists emitted recommendations.
type Recorder interface {
	RecordRecommendations(ctx context.Context, selected media.Item, recs []Recommendation) error
}

// Service answers search and recommendation requests.
type Service struct {
	catalog     Catalog
	generator   *Generator
	recorder    Recorder
	searchLimit int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRecorder logs every successful recommendation response.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithSearchLimit sets the number of search results.
func WithSearchLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// NewService creates a recommendation service over cat.
func NewService(cat Catalog, table *curated.Table, opts ...ServiceOption) *Service {
	s := &Service{
		catalog:     cat,
		generator:   NewGenerator(cat, table),
		searchLimit: DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseType maps a request type to a media type. Empty means book.
func ParseType(s string) (media.Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(media.Book):
		return media.Book, nil
	case string(media.Movie):
		return media.Movie, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// Search finds books or movies matching query.
func (s *Service) Search(ctx context.Context, query string, typ media.Type) ([]media.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []media.Item{}, nil
	}

	var res catalog.Result[[]media.Item]
	switch typ {
	case media.Movie:
		res = s.catalog.SearchMovies(ctx, query, s.searchLimit)
	case media.Book:
		res = s.catalog.SearchBooks(ctx, query, s.searchLimit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}

	if !res.IsOK() {
		return nil, fmt.Errorf("search %s %q: %w", typ, query, res.Err)
	}
	if res.Value == nil {
		return []media.Item{}, nil
	}
	return res.Value, nil
}

// Resolve looks up an item by its id. Invalid and unknown ids are NotFound errors.
func (s *Service) Resolve(ctx context.Context, id string) (media.Item, error) {
	ref, err := media.ParseID(id)
	if err != nil {
		return media.Item{}, apperrors.NewNotFoundError("item", id)
	}

	var res catalog.Result[media.Item]
	if ref.Type == media.Movie {
		res = s.catalog.MovieDetails(ctx, ref.MovieID)
	} else {
		res = s.catalog.BookDetails(ctx, ref.Key, ref.Source)
	}

	switch res.Status {
	case catalog.StatusOK:
		return res.Value, nil
	case catalog.StatusNotFound:
		return media.Item{}, apperrors.NewNotFoundError("item", id)
	default:
		return media.Item{}, fmt.Errorf("resolve %s: %w", id, res.Err)
	}
}

// GetRecommendations resolves id and builds its recommendation list.
func (s *Service) GetRecommendations(ctx context.Context, id string) (*Response, error) {
	start := time.Now()

	selected, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	pool, err := s.generator.Generate(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("generate candidates for %s: %w", id, err)
	}

	recs := Rank(selected, pool)
	metrics.RecordRecommendation(string(selected.Type), time.Since(start), len(recs))
	slog.Info("Built recommendations",
		"item_id", selected.ID,
		"title", selected.Title,
		"candidates", len(pool),
		"returned", len(recs),
		"duration", time.Since(start))

	if s.recorder != nil {
		if err := s.recorder.RecordRecommendations(ctx, selected, recs); err != nil {
			slog.Warn("Failed to record recommendations", "item_id", selected.ID, "error", err)
		}
	}

	return &Response{SelectedItem: selected, Recommendations: recs}, nil
}
