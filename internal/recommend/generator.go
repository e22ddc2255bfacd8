package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lepinkainen/bookreel/internal/catalog"
	"github.com/lepinkainen/bookreel/internal/curated"
	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/metrics"
	"github.com/lepinkainen/bookreel/internal/themes"
)

// Strategy quotas, scores and limits.
const (
	authorQuota   = 3
	subjectQuota  = 3
	crossQuota    = 3
	directorQuota = 2
	similarQuota  = 3

	authorScore   = 80
	subjectScore  = 70
	curatedScore  = 75
	themeScore    = 65
	directorScore = 85
	similarScore  = 75
	sharedBonus   = 5

	maxSubjects     = 5
	maxThemeQueries = 8
	fetchLimit      = 10

	// MinMovieScorePct is the lowest TMDB score (0-100) a movie candidate may have.
	MinMovieScorePct = 50
)

// Candidate labels.
const (
	labelCurated = "Curated cross-media pick"
	labelSimilar = "Similar movie"
)

// Generator runs the candidate strategies for a selected item.
type Generator struct {
	catalog Catalog
	curated *curated.Table
}

// NewGenerator creates a generator. A nil table disables curated picks.
func NewGenerator(cat Catalog, table *curated.Table) *Generator {
	return &Generator{catalog: cat, curated: table}
}

// Generate returns the candidate pool for selected, strategy by strategy in a
// fixed order. Failing lookups are skipped; only cancellation is an error.
func (g *Generator) Generate(ctx context.Context, selected media.Item) ([]Candidate, error) {
	p := newPool(selected)

	var steps []strategy
	if selected.IsMovie() {
		steps = []strategy{
			{"director", g.sameDirector},
			{"similar", g.similarMovies},
			{"books", g.crossToBooks},
		}
	} else {
		steps = []strategy{
			{"author", g.sameAuthor},
			{"subject", g.sharedSubjects},
			{"movies", g.crossToMovies},
		}
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := len(p.candidates)
		if err := s.run(ctx, p); err != nil {
			return nil, err
		}
		added := len(p.candidates) - before
		metrics.RecordCandidates(s.name, added)
		slog.Debug("Strategy finished", "strategy", s.name, "selected", selected.ID, "candidates", added)
	}

	return p.candidates, nil
}

type strategy struct {
	name string
	run  func(context.Context, *pool) error
}

// pool collects candidates, rejecting the selection, duplicates and low-rated movies.
type pool struct {
	selected   media.Item
	seen       map[string]bool
	candidates []Candidate
}

func newPool(selected media.Item) *pool {
	return &pool{
		selected: selected,
		seen:     map[string]bool{selected.ID: true},
	}
}

func (p *pool) add(item media.Item, source string, score int) bool {
	if item.ID == "" || p.seen[item.ID] {
		return false
	}
	if item.IsMovie() && item.ScorePct < MinMovieScorePct {
		return false
	}
	p.seen[item.ID] = true
	p.candidates = append(p.candidates, Candidate{Item: item, Source: source, Score: score})
	return true
}

// items unwraps a list result. Failures are logged by the adapters and yield nothing here.
func items(res catalog.Result[[]media.Item], step, query string) []media.Item {
	if !res.IsOK() {
		slog.Debug("Skipping candidate lookup", "step", step, "query", query, "status", res.Status.String(), "error", res.Err)
		return nil
	}
	return res.Value
}

func (g *Generator) sameAuthor(ctx context.Context, p *pool) error {
	creator := p.selected.Creator
	if creator == "" || creator == media.Unknown {
		return nil
	}

	selectedTitle := themes.Normalize(p.selected.Title)
	label := "By the same author: " + creator
	found := 0
	for _, item := range items(g.catalog.BooksByAuthor(ctx, creator, fetchLimit), "author", creator) {
		if themes.Normalize(item.Title) == selectedTitle {
			continue
		}
		if p.add(item, label, authorScore) {
			found++
		}
		if found >= authorQuota {
			break
		}
	}
	return ctx.Err()
}

func (g *Generator) sharedSubjects(ctx context.Context, p *pool) error {
	genres := themes.FilterGeneric(p.selected.Genres)
	if len(genres) > maxSubjects {
		genres = genres[:maxSubjects]
	}
	selectedGenres := themes.NewSet(themes.NormalizeAll(p.selected.Genres)...)

	found := 0
	for _, genre := range genres {
		if found >= subjectQuota {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res := g.catalog.BooksBySubject(ctx, genre, media.SourceOpenLibrary, fetchLimit)
		for _, item := range items(res, "subject", genre) {
			shared := selectedGenres.Intersect(themes.NewSet(themes.NormalizeAll(item.Genres)...))
			if shared < 2 {
				continue
			}
			if p.add(item, "Shares subject: "+genre, subjectScore+sharedBonus*shared) {
				found++
			}
			if found >= subjectQuota {
				break
			}
		}
	}
	return ctx.Err()
}

func (g *Generator) crossToMovies(ctx context.Context, p *pool) error {
	found, err := g.curatedPicks(ctx, p, media.Movie)
	if err != nil {
		return err
	}

	selectedThemes := themes.Expand(p.selected.Genres)
	for _, theme := range themeQueries(selectedThemes) {
		if found >= crossQuota {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		label := fmt.Sprintf("Movie with %s themes", theme)
		for _, item := range items(g.catalog.MoviesByTheme(ctx, theme, fetchLimit), "movie_theme", theme) {
			shared := themes.Expand(item.Genres).Intersect(selectedThemes)
			if shared < 2 {
				continue
			}
			if p.add(item, label, themeScore+sharedBonus*shared) {
				found++
			}
			if found >= crossQuota {
				break
			}
		}
	}
	return ctx.Err()
}

func (g *Generator) sameDirector(ctx context.Context, p *pool) error {
	directorID, err := strconv.Atoi(p.selected.CreatorKey)
	if err != nil || directorID <= 0 {
		return nil
	}

	director := p.selected.Creator
	label := "Directed by " + director
	found := 0
	res := g.catalog.MoviesByDirector(ctx, directorID, director, fetchLimit)
	for _, item := range items(res, "director", director) {
		if p.add(item, label, directorScore) {
			found++
		}
		if found >= directorQuota {
			break
		}
	}
	return ctx.Err()
}

func (g *Generator) similarMovies(ctx context.Context, p *pool) error {
	ref, err := media.ParseID(p.selected.ID)
	if err != nil || ref.MovieID == 0 {
		return nil
	}

	selectedGenres := themes.NewSet(themes.NormalizeAll(p.selected.Genres)...)
	found := 0
	for _, item := range items(g.catalog.SimilarMovies(ctx, ref.MovieID, fetchLimit), "similar", p.selected.ID) {
		shared := selectedGenres.Intersect(themes.NewSet(themes.NormalizeAll(item.Genres)...))
		if shared < 2 {
			continue
		}
		if p.add(item, labelSimilar, similarScore+sharedBonus*shared) {
			found++
		}
		if found >= similarQuota {
			break
		}
	}
	return ctx.Err()
}

func (g *Generator) crossToBooks(ctx context.Context, p *pool) error {
	found, err := g.curatedPicks(ctx, p, media.Book)
	if err != nil {
		return err
	}

	selectedThemes := themes.Expand(p.selected.Genres)
	for _, theme := range themeQueries(selectedThemes) {
		if found >= crossQuota {
			break
		}

		label := fmt.Sprintf("Book with %s themes", theme)
		for _, source := range []string{media.SourceOpenLibrary, media.SourceGoogleBooks} {
			if err := ctx.Err(); err != nil {
				return err
			}

			accepted := 0
			for _, item := range items(g.catalog.BooksBySubject(ctx, theme, source, fetchLimit), "book_theme", theme) {
				shared := themes.Expand(item.Genres).Intersect(selectedThemes)
				if shared < 1 {
					continue
				}
				if p.add(item, label, themeScore+sharedBonus*shared) {
					found++
					accepted++
				}
				if found >= crossQuota {
					break
				}
			}
			// Google Books only fills in for themes OpenLibrary could not serve
			if accepted > 0 || found >= crossQuota {
				break
			}
		}
	}
	return ctx.Err()
}

// curatedPicks adds the first acceptable title match for each curated relation
// of the wanted type, up to the cross-media quota.
func (g *Generator) curatedPicks(ctx context.Context, p *pool, want media.Type) (int, error) {
	entry, ok := g.curated.Match(p.selected.Title, p.selected.Description)
	if !ok {
		return 0, nil
	}

	related := entry.RelatedMovies
	lookup := g.catalog.MoviesByTitle
	if want == media.Book {
		related = entry.RelatedBooks
		lookup = g.catalog.BooksByTitle
	}

	found := 0
	for _, title := range related {
		if found >= crossQuota {
			break
		}
		if err := ctx.Err(); err != nil {
			return found, err
		}

		for _, item := range items(lookup(ctx, title, fetchLimit), "curated", title) {
			if item.Type != want {
				continue
			}
			if p.add(item, labelCurated, curatedScore) {
				found++
				break
			}
		}
	}
	return found, ctx.Err()
}

// themeQueries orders expanded themes for querying: taxonomy families first,
// then the remaining terms sorted, capped.
func themeQueries(s themes.Set) []string {
	order := s.QueryOrder()
	if len(order) > maxThemeQueries {
		order = order[:maxThemeQueries]
	}
	return order
}
