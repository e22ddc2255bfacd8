package recommend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookreel/internal/curated"
	"github.com/lepinkainen/bookreel/internal/media"
)

func recIDs(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Item.ID)
	}
	return out
}

func candidates(kind media.Type, n, score int) []Candidate {
	out := make([]Candidate, 0, n)
	for i := range n {
		id := fmt.Sprintf("book-works-OL%dW", i+1)
		item := book(id, id)
		if kind == media.Movie {
			id = fmt.Sprintf("movie-%d", i+1)
			item = movie(id, id, 70)
		}
		out = append(out, Candidate{Item: item, Source: "test", Score: score - i})
	}
	return out
}

func TestRank_DuneScenario(t *testing.T) {
	pool, err := NewGenerator(duneCatalog(), curated.Default()).Generate(t.Context(), duneBook())
	require.NoError(t, err)

	recs := Rank(duneBook(), pool)
	assert.Equal(t, []string{
		"movie-157336", "movie-329865", "movie-335984",
		"book-works-OL10W", "book-works-OL2W", "book-works-OL3W",
	}, recIDs(recs))

	assert.Equal(t, "Curated cross-media pick", recs[1].RelationshipType)
	assert.Equal(t, "Arrival", recs[1].Item.Title)
	assert.Equal(t, "Foundation", recs[3].Item.Title)
	assert.Equal(t, "Shares subject: science fiction", recs[3].RelationshipType)
}

func TestRank_MovieSelectedPutsBooksFirst(t *testing.T) {
	pool := append(candidates(media.Movie, 5, 90), candidates(media.Book, 5, 60)...)

	recs := Rank(duneMovie(), pool)
	assert.Equal(t, []string{
		"book-works-OL1W", "book-works-OL2W", "book-works-OL3W",
		"movie-1", "movie-2", "movie-3",
	}, recIDs(recs))
}

func TestRank_TopsUpFromScoreOrder(t *testing.T) {
	pool := append(candidates(media.Book, 8, 90), candidates(media.Movie, 1, 50)...)

	recs := Rank(duneBook(), pool)
	assert.Equal(t, []string{
		"movie-1",
		"book-works-OL1W", "book-works-OL2W", "book-works-OL3W",
		"book-works-OL4W", "book-works-OL5W",
	}, recIDs(recs))
}

func TestRank_DedupesAndDropsSelected(t *testing.T) {
	selected := duneBook()
	pool := []Candidate{
		{Item: selected, Source: "self", Score: 100},
		{Item: book("book-works-OL1W", "A"), Source: "first", Score: 70},
		{Item: book("book-works-OL1W", "A"), Source: "second", Score: 95},
		{Item: movie("movie-1", "M", 60), Source: "movie", Score: 65},
	}

	recs := Rank(selected, pool)
	require.Len(t, recs, 2)
	assert.Equal(t, "movie-1", recs[0].Item.ID)
	assert.Equal(t, "first", recs[1].RelationshipType, "first occurrence wins")
}

func TestRank_EmptyPool(t *testing.T) {
	recs := Rank(duneBook(), nil)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRank_Deterministic(t *testing.T) {
	pool := append(candidates(media.Book, 6, 80), candidates(media.Movie, 6, 80)...)
	// Equal scores must keep pool order
	for i := range pool {
		pool[i].Score = 75
	}

	first := Rank(duneBook(), pool)
	for range 20 {
		assert.Equal(t, first, Rank(duneBook(), pool))
	}
	assert.Equal(t, []string{
		"movie-1", "movie-2", "movie-3",
		"book-works-OL1W", "book-works-OL2W", "book-works-OL3W",
	}, recIDs(first))
}

func TestRank_Invariants(t *testing.T) {
	pools := [][]Candidate{
		append(candidates(media.Book, 10, 90), candidates(media.Movie, 10, 95)...),
		candidates(media.Book, 2, 90),
		candidates(media.Movie, 9, 90),
		append(candidates(media.Movie, 2, 60), candidates(media.Book, 2, 99)...),
	}

	for i, pool := range pools {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			recs := Rank(duneBook(), pool)
			assert.LessOrEqual(t, len(recs), MaxRecommendations)

			seen := map[string]bool{}
			movies, books := 0, 0
			for _, r := range recs {
				assert.False(t, seen[r.Item.ID], "duplicate %s", r.Item.ID)
				seen[r.Item.ID] = true
				if r.Item.IsMovie() {
					movies++
				} else {
					books++
				}
			}

			var poolMovies, poolBooks int
			for _, c := range pool {
				if c.Item.IsMovie() {
					poolMovies++
				} else {
					poolBooks++
				}
			}
			assert.Equal(t, min(len(pool), MaxRecommendations), len(recs))
			assert.GreaterOrEqual(t, movies, min(typeQuota, poolMovies))
			assert.GreaterOrEqual(t, books, min(typeQuota, poolBooks))
		})
	}
}
