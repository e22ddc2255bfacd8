package tmdb

import (
	"context"
	"strings"
)

// GenreNames resolves genre ids to names, skipping unknown ids.
func (c *Client) GenreNames(ctx context.Context, ids []int) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	genres, err := c.getGenres(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genres[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// GenreID finds the id of the movie genre called name, case-insensitively.
func (c *Client) GenreID(ctx context.Context, name string) (int, bool, error) {
	genres, err := c.getGenres(ctx)
	if err != nil {
		return 0, false, err
	}

	name = strings.TrimSpace(name)
	for id, genreName := range genres {
		if strings.EqualFold(genreName, name) {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (c *Client) getGenres(ctx context.Context) (map[int]string, error) {
	c.mu.RLock()
	if c.genreCache != nil {
		genres := c.genreCache
		c.mu.RUnlock()
		return genres, nil
	}
	c.mu.RUnlock()

	var response struct {
		Genres []Genre `json:"genres"`
	}

	if err := c.getJSON(ctx, "/genre/movie/list", nil, &response); err != nil {
		return nil, err
	}

	result := make(map[int]string, len(response.Genres))
	for _, g := range response.Genres {
		result[g.ID] = g.Name
	}

	c.mu.Lock()
	c.genreCache = result
	c.mu.Unlock()

	return result, nil
}
