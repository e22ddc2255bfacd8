package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genreListHandler(t *testing.T, calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/genre/movie/list", r.URL.Path)
		response := map[string]any{
			"genres": []map[string]any{
				{"id": 28, "name": "Action"},
				{"id": 878, "name": "Science Fiction"},
				{"id": 10752, "name": "War"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}
}

func TestGetGenresCachesResponse(t *testing.T) {
	var calls int32
	client := newTestClient(t, genreListHandler(t, &calls))

	genres, err := client.getGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Action", genres[28])

	genres, err = client.getGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Action", genres[28])

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenreNames(t *testing.T) {
	var calls int32
	client := newTestClient(t, genreListHandler(t, &calls))

	names, err := client.GenreNames(context.Background(), []int{878, 999, 28})
	require.NoError(t, err)
	assert.Equal(t, []string{"Science Fiction", "Action"}, names)

	names, err = client.GenreNames(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestGenreID(t *testing.T) {
	var calls int32
	client := newTestClient(t, genreListHandler(t, &calls))

	id, ok, err := client.GenreID(context.Background(), "science fiction")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 878, id)

	_, ok, err = client.GenreID(context.Background(), "space opera")
	require.NoError(t, err)
	assert.False(t, ok)
}
