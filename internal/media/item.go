// Package media defines the normalized item shared by catalogs, the curated
// table and the recommender, together with its load-bearing id format.
package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the kind of media an item represents.
type Type string

const (
	Book  Type = "book"
	Movie Type = "movie"
)

// Catalog sources an item can come from.
const (
	SourceOpenLibrary = "openlibrary"
	SourceGoogleBooks = "googlebooks"
	SourceTMDB        = "tmdb"
)

const (
	// Unknown is the placeholder for a missing creator or year.
	Unknown = "Unknown"
	// MaxDescriptionLen bounds Description, in runes.
	MaxDescriptionLen = 500

	bookPrefix        = "book-"
	moviePrefix       = "movie-"
	googleBooksPrefix = "gb-"
)

// ErrInvalidID is returned when an id does not follow the item id format.
var ErrInvalidID = fmt.Errorf("invalid item id")

// Item is a normalized book or movie.
type Item struct {
	ID          string   `json:"id"`
	Type        Type     `json:"type"`
	Title       string   `json:"title"`
	Creator     string   `json:"creator"`
	Year        string   `json:"year"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Genres      []string `json:"genres"`
	ScorePct    int      `json:"score_pct,omitempty"`
	Source      string   `json:"source,omitempty"`
	CreatorKey  string   `json:"creator_key,omitempty"`
}

// IsBook reports whether the item is a book.
func (i Item) IsBook() bool { return i.Type == Book }

// IsMovie reports whether the item is a movie.
func (i Item) IsMovie() bool { return i.Type == Movie }

// WithDefaults fills the placeholders for missing fields and bounds the description.
func (i Item) WithDefaults() Item {
	if strings.TrimSpace(i.Creator) == "" {
		i.Creator = Unknown
	}
	if strings.TrimSpace(i.Year) == "" {
		i.Year = Unknown
	}
	i.Description = TruncateDescription(i.Description)
	if i.Genres == nil {
		i.Genres = []string{}
	}
	return i
}

// TruncateDescription cuts text to MaxDescriptionLen runes, adding an ellipsis.
func TruncateDescription(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= MaxDescriptionLen {
		return text
	}
	return strings.TrimSpace(string(runes[:MaxDescriptionLen-3])) + "..."
}

// YearFromDate returns the first 4-digit run of a date string such as
// "1965-08-01" or "August 1965", or Unknown.
func YearFromDate(date string) string {
	run := 0
	for i, r := range date {
		if r < '0' || r > '9' {
			run = 0
			continue
		}
		run++
		if run == 4 && (i+1 == len(date) || date[i+1] < '0' || date[i+1] > '9') {
			return date[i-3 : i+1]
		}
	}
	return Unknown
}

// YearFromInt formats a positive year, or returns Unknown.
func YearFromInt(year int) string {
	if year <= 0 {
		return Unknown
	}
	return strconv.Itoa(year)
}

// OpenLibraryID builds the item id for an OpenLibrary key such as "/works/OL45883W".
func OpenLibraryID(key string) string {
	key = strings.TrimPrefix(key, "/")
	return bookPrefix + strings.ReplaceAll(key, "/", "-")
}

// GoogleBooksID builds the item id for a Google Books volume id.
func GoogleBooksID(volumeID string) string {
	return bookPrefix + googleBooksPrefix + volumeID
}

// MovieID builds the item id for a TMDB movie id.
func MovieID(tmdbID int) string {
	return moviePrefix + strconv.Itoa(tmdbID)
}

// Ref is a parsed item id: enough to look the item up again.
type Ref struct {
	Type    Type
	Source  string
	Key     string // OpenLibrary key or Google Books volume id
	MovieID int
}

// ParseID inverts OpenLibraryID, GoogleBooksID and MovieID.
func ParseID(id string) (Ref, error) {
	switch {
	case strings.HasPrefix(id, moviePrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(id, moviePrefix))
		if err != nil || n <= 0 {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		return Ref{Type: Movie, Source: SourceTMDB, MovieID: n}, nil

	case strings.HasPrefix(id, bookPrefix+googleBooksPrefix):
		volumeID := strings.TrimPrefix(id, bookPrefix+googleBooksPrefix)
		if volumeID == "" {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		return Ref{Type: Book, Source: SourceGoogleBooks, Key: volumeID}, nil

	case strings.HasPrefix(id, bookPrefix):
		rest := strings.TrimPrefix(id, bookPrefix)
		if rest == "" || strings.HasPrefix(rest, "-") || strings.HasSuffix(rest, "-") {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		return Ref{Type: Book, Source: SourceOpenLibrary, Key: "/" + strings.ReplaceAll(rest, "-", "/")}, nil
	}

	return Ref{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
}
