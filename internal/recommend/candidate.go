// Package recommend turns a selected book or movie into a short, ranked,
// type-diverse list of related items.
package recommend

import (
	"context"

	"github.com/lepinkainen/bookreel/internal/catalog"
	"github.com/lepinkainen/bookreel/internal/media"
)

// Catalog is the set of catalog lookups the recommendation pipeline needs.
// *catalog.Adapters implements it.
type Catalog interface {
	BookDetails(ctx context.Context, key, source string) catalog.Result[media.Item]
	MovieDetails(ctx context.Context, id int) catalog.Result[media.Item]

	SearchBooks(ctx context.Context, query string, limit int) catalog.Result[[]media.Item]
	SearchMovies(ctx context.Context, query string, limit int) catalog.Result[[]media.Item]

	BooksByAuthor(ctx context.Context, author string, limit int) catalog.Result[[]media.Item]
	BooksBySubject(ctx context.Context, subject, source string, limit int) catalog.Result[[]media.Item]
	BooksByTitle(ctx context.Context, title string, limit int) catalog.Result[[]media.Item]

	MoviesByTitle(ctx context.Context, title string, limit int) catalog.Result[[]media.Item]
	MoviesByTheme(ctx context.Context, theme string, limit int) catalog.Result[[]media.Item]
	MoviesByDirector(ctx context.Context, directorID int, director string, limit int) catalog.Result[[]media.Item]
	SimilarMovies(ctx context.Context, id int, limit int) catalog.Result[[]media.Item]
}

var _ Catalog = (*catalog.Adapters)(nil)

// Candidate is an item proposed by one of the generator strategies.
type Candidate struct {
	Item media.Item
	// Source is the human-readable reason the item was proposed.
	Source string
	Score  int
}

// Recommendation is one entry of the final list.
type Recommendation struct {
	Item             media.Item `json:"item"`
	RelationshipType string     `json:"relationship_type"`
}

// Response is the result of a recommendation request.
type Response struct {
	SelectedItem    media.Item       `json:"selected_item"`
	Recommendations []Recommendation `json:"recommendations"`
}
