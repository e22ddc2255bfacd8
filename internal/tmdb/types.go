package tmdb

import (
	"math"
	"strconv"
)

// Genre is a TMDB genre as returned inline by the details endpoint.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the movie shape shared by search, discover, similar and details.
// List endpoints fill GenreIDs; the details endpoint fills Genres.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int   `json:"genre_ids"`
	Genres      []Genre `json:"genres"`
}

// YearInt returns the release year, or 0 when the date is missing or malformed.
func (m Movie) YearInt() int {
	if len(m.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(m.ReleaseDate[:4]); err == nil {
			return year
		}
	}
	return 0
}

// ScorePct is the vote average on a 0-100 scale.
func (m Movie) ScorePct() int {
	return int(math.Round(m.VoteAverage * 10))
}

// CrewMember is one crew entry of a movie's credits.
type CrewMember struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Job        string  `json:"job"`
	Department string  `json:"department"`
	Popularity float64 `json:"popularity"`
}

// Credits holds the crew of a movie.
type Credits struct {
	Crew []CrewMember `json:"crew"`
}

// MovieDetails is a movie with its credits appended.
type MovieDetails struct {
	Movie
	Runtime int     `json:"runtime"`
	Credits Credits `json:"credits"`
}

// Directors returns the crew members credited with the Director job, in credit order.
func (d MovieDetails) Directors() []CrewMember {
	var out []CrewMember
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			out = append(out, c)
		}
	}
	return out
}

// CrewCredit is a movie a person worked on, from the person's movie credits.
type CrewCredit struct {
	Movie
	Job string `json:"job"`
}

type pagedMovies struct {
	Page    int     `json:"page"`
	Results []Movie `json:"results"`
}
