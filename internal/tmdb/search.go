package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SearchMovies performs a movie-specific search on TMDB.
// If year > 0, it is passed as a hint to TMDB (but results are otherwise left in API order).
func (c *Client) SearchMovies(ctx context.Context, query string, year int, limit int) ([]Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	return c.listMovies(ctx, "/search/movie", params, limit)
}

// DiscoverByGenre lists popular movies carrying a TMDB genre.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID int, limit int) ([]Movie, error) {
	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")

	return c.listMovies(ctx, "/discover/movie", params, limit)
}

// SimilarMovies lists movies TMDB considers similar to movieID.
func (c *Client) SimilarMovies(ctx context.Context, movieID int, limit int) ([]Movie, error) {
	return c.listMovies(ctx, fmt.Sprintf("/movie/%d/similar", movieID), nil, limit)
}

func (c *Client) listMovies(ctx context.Context, path string, params url.Values, limit int) ([]Movie, error) {
	if limit <= 0 {
		limit = 1
	}

	var response pagedMovies
	if err := c.getJSON(ctx, path, params, &response); err != nil {
		return nil, err
	}

	results := make([]Movie, 0, limit)
	for _, item := range response.Results {
		if len(results) >= limit {
			break
		}
		// Filter out results with 0.0 score (upcoming/unrated movies)
		if item.VoteAverage == 0.0 {
			continue
		}
		results = append(results, item)
	}

	return results, nil
}
