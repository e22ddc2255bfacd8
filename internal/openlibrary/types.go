package openlibrary

import (
	"github.com/goccy/go-json"
)

// SearchDoc is one result of search.json, limited to the requested fields.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	AuthorKey        []string `json:"author_key"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int      `json:"cover_i"`
	Subject          []string `json:"subject"`
}

// Work is a work record from /works/{id}.json.
type Work struct {
	Key              string       `json:"key"`
	Title            string       `json:"title"`
	Description      Text         `json:"description"`
	Subjects         []string     `json:"subjects"`
	Covers           []int        `json:"covers"`
	Authors          []WorkAuthor `json:"authors"`
	FirstPublishDate string       `json:"first_publish_date"`
}

// WorkAuthor references an author from a work record.
type WorkAuthor struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
}

// AuthorKeys returns the author keys of the work, in order.
func (w Work) AuthorKeys() []string {
	keys := make([]string, 0, len(w.Authors))
	for _, a := range w.Authors {
		if a.Author.Key != "" {
			keys = append(keys, a.Author.Key)
		}
	}
	return keys
}

// CoverID returns the first valid cover id, or 0.
func (w Work) CoverID() int {
	for _, id := range w.Covers {
		if id > 0 {
			return id
		}
	}
	return 0
}

// Author is an author record from /authors/{id}.json.
type Author struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Text is a free-text field that OpenLibrary serves either as a plain string
// or as {"type": "/type/text", "value": "..."}.
type Text string

// UnmarshalJSON accepts both representations.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}

	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	*t = Text(typed.Value)
	return nil
}
