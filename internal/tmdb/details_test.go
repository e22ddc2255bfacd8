package tmdb

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lepinkainen/bookreel/internal/errors"
)

func TestGetMovieDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/438631", r.URL.Path)
		assert.Equal(t, "credits", r.URL.Query().Get("append_to_response"))
		_, _ = w.Write([]byte(`{
			"id": 438631,
			"title": "Dune",
			"release_date": "2021-09-15",
			"overview": "Paul Atreides...",
			"poster_path": "/d5NXSklXo0qyIYkgV94XAgMIckC.jpg",
			"vote_average": 7.8,
			"runtime": 155,
			"genres": [{"id": 878, "name": "Science Fiction"}, {"id": 12, "name": "Adventure"}],
			"credits": {"crew": [
				{"id": 1, "name": "Hans Zimmer", "job": "Original Music Composer"},
				{"id": 137427, "name": "Denis Villeneuve", "job": "Director", "department": "Directing"}
			]}
		}`))
	})

	details, err := client.GetMovieDetails(context.Background(), 438631)
	require.NoError(t, err)

	assert.Equal(t, "Dune", details.Title)
	assert.Equal(t, 2021, details.YearInt())
	assert.Equal(t, 78, details.ScorePct())
	assert.Equal(t, 155, details.Runtime)
	assert.Len(t, details.Genres, 2)

	directors := details.Directors()
	require.Len(t, directors, 1)
	assert.Equal(t, "Denis Villeneuve", directors[0].Name)
	assert.Equal(t, 137427, directors[0].ID)
}

func TestGetMovieDetails_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	_, err := client.GetMovieDetails(context.Background(), 1)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestDirectedMovies_FiltersAndSortsByPopularity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/person/137427/movie_credits", r.URL.Path)
		_, _ = w.Write([]byte(`{"crew": [
			{"id": 1, "title": "Incendies", "job": "Director", "popularity": 12.5},
			{"id": 2, "title": "Arrival", "job": "Director", "popularity": 40.1},
			{"id": 2, "title": "Arrival", "job": "Screenplay", "popularity": 40.1},
			{"id": 3, "title": "Some Short", "job": "Writer", "popularity": 99},
			{"id": 4, "title": "Sicario", "job": "Director", "popularity": 30.0},
			{"id": 1, "title": "Incendies", "job": "Director", "popularity": 12.5}
		]}`))
	})

	movies, err := client.DirectedMovies(context.Background(), 137427)
	require.NoError(t, err)

	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	assert.Equal(t, []string{"Arrival", "Sicario", "Incendies"}, titles)
}
