package recommend

import (
	"slices"

	"github.com/lepinkainen/bookreel/internal/media"
)

const (
	// MaxRecommendations is the length of the final list.
	MaxRecommendations = 6
	// typeQuota is how many items of each type are placed before topping up.
	typeQuota = 3
)

// Rank dedupes, sorts and diversifies the candidate pool for selected.
// The cross-media type leads: movies first for a selected book, books first for a
// selected movie. The output is deterministic for a given pool.
func Rank(selected media.Item, pool []Candidate) []Recommendation {
	unique := dedupe(pool, map[string]bool{selected.ID: true})

	slices.SortStableFunc(unique, func(a, b Candidate) int {
		return b.Score - a.Score
	})

	var books, movies []Candidate
	for _, c := range unique {
		if c.Item.IsMovie() {
			movies = append(movies, c)
		} else {
			books = append(books, c)
		}
	}

	first, second := movies, books
	if selected.IsMovie() {
		first, second = books, movies
	}

	picked := make([]Candidate, 0, MaxRecommendations)
	picked = append(picked, first[:min(typeQuota, len(first))]...)
	picked = append(picked, second[:min(typeQuota, len(second))]...)
	picked = dedupe(picked, nil)

	if len(picked) < MaxRecommendations {
		taken := make(map[string]bool, len(picked))
		for _, c := range picked {
			taken[c.Item.ID] = true
		}
		for _, c := range unique {
			if len(picked) >= MaxRecommendations {
				break
			}
			if !taken[c.Item.ID] {
				taken[c.Item.ID] = true
				picked = append(picked, c)
			}
		}
	}

	if len(picked) > MaxRecommendations {
		picked = picked[:MaxRecommendations]
	}

	out := make([]Recommendation, 0, len(picked))
	for _, c := range picked {
		out = append(out, Recommendation{Item: c.Item, RelationshipType: c.Source})
	}
	return out
}

// dedupe keeps the first candidate per id, skipping ids in exclude.
func dedupe(pool []Candidate, exclude map[string]bool) []Candidate {
	seen := make(map[string]bool, len(pool)+len(exclude))
	for id := range exclude {
		seen[id] = true
	}

	out := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if seen[c.Item.ID] {
			continue
		}
		seen[c.Item.ID] = true
		out = append(out, c)
	}
	return out
}
