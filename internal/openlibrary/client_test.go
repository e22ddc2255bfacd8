package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lepinkainen/bookreel/internal/errors"
	"github.com/lepinkainen/bookreel/internal/ratelimit"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(
		WithBaseURL(server.URL),
		WithCoversURL("https://covers.test"),
		WithHTTPClient(server.Client()),
		WithRateLimiter(ratelimit.New("test", 1000)),
	)
}

func TestSearch_BuildsQuery(t *testing.T) {
	var captured url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "bookreel")
		captured = r.URL.Query()
		_, _ = w.Write([]byte(`{"numFound": 3, "docs": [
			{"key": "/works/OL893415W", "title": "Dune", "author_name": ["Frank Herbert"], "author_key": ["OL79034A"], "first_publish_year": 1965, "cover_i": 11481354, "subject": ["Science fiction", "Dune (Imaginary place)"]},
			{"key": "/works/OL893512W", "title": "Dune Messiah", "author_name": ["Frank Herbert"]},
			{"key": "/works/OL893526W", "title": "Children of Dune"}
		]}`))
	})

	docs, err := client.Search(context.Background(), Query{Author: "Frank Herbert", Subject: " science fiction "}, 2)
	require.NoError(t, err)

	assert.Equal(t, "Frank Herbert", captured.Get("author"))
	assert.Equal(t, "science fiction", captured.Get("subject"))
	assert.Empty(t, captured.Get("q"))
	assert.Equal(t, "2", captured.Get("limit"))
	assert.Equal(t, searchFields, captured.Get("fields"))

	require.Len(t, docs, 2, "limit is enforced client-side too")
	assert.Equal(t, "/works/OL893415W", docs[0].Key)
	assert.Equal(t, []string{"OL79034A"}, docs[0].AuthorKey)
	assert.Equal(t, 1965, docs[0].FirstPublishYear)
	assert.Equal(t, 11481354, docs[0].CoverID)
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Search(context.Background(), Query{Title: "  "}, 5)
	assert.Error(t, err)
}

func TestWork_DescriptionForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Text
	}{
		{name: "plain string", body: `{"key":"/works/OL1W","title":"A","description":"Plain."}`, want: "Plain."},
		{name: "typed text", body: `{"key":"/works/OL1W","title":"A","description":{"type":"/type/text","value":"Typed."}}`, want: "Typed."},
		{name: "missing", body: `{"key":"/works/OL1W","title":"A"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/works/OL1W.json", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			work, err := client.Work(context.Background(), "/works/OL1W")
			require.NoError(t, err)
			assert.Equal(t, tt.want, work.Description)
		})
	}
}

func TestWork_Fields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"key": "/works/OL893415W",
			"title": "Dune",
			"subjects": ["Science fiction", "Ecology"],
			"covers": [-1, 11481354],
			"authors": [{"author": {"key": "/authors/OL79034A"}, "type": {"key": "/type/author_role"}}],
			"first_publish_date": "1965"
		}`))
	})

	work, err := client.Work(context.Background(), "/works/OL893415W")
	require.NoError(t, err)
	assert.Equal(t, []string{"/authors/OL79034A"}, work.AuthorKeys())
	assert.Equal(t, 11481354, work.CoverID())
	assert.Equal(t, "https://covers.test/b/id/11481354-L.jpg", client.CoverURL(work.CoverID()))
	assert.Empty(t, client.CoverURL(0))
}

func TestWork_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Work(context.Background(), "/works/OL0W")
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = client.Work(context.Background(), "/authors/OL1A")
	assert.True(t, apperrors.IsNotFoundError(err), "non-work keys are not works")
}

func TestWork_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Work(context.Background(), "/works/OL1W")
	assert.True(t, apperrors.IsTemporary(err))
}

func TestAuthor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authors/OL79034A.json", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{"key": "/authors/OL79034A", "name": "Frank Herbert"}))
	})

	for _, key := range []string{"/authors/OL79034A", "OL79034A"} {
		author, err := client.Author(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, "Frank Herbert", author.Name)
	}
}
