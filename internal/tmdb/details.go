package tmdb

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
)

// GetMovieDetails fetches a movie by ID with its credits appended.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var details MovieDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// DirectedMovies returns the movies personID is credited as Director of,
// most popular first.
func (c *Client) DirectedMovies(ctx context.Context, personID int) ([]CrewCredit, error) {
	var response struct {
		Crew []CrewCredit `json:"crew"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/person/%d/movie_credits", personID), nil, &response); err != nil {
		return nil, err
	}

	directed := make([]CrewCredit, 0, len(response.Crew))
	seen := make(map[int]bool)
	for _, credit := range response.Crew {
		if credit.Job != "Director" || seen[credit.ID] {
			continue
		}
		seen[credit.ID] = true
		directed = append(directed, credit)
	}

	slices.SortStableFunc(directed, func(a, b CrewCredit) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})
	return directed, nil
}
