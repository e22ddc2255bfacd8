// Package curated holds known-good genre and relation data for well-known
// titles, used to patch thin catalog records.
package curated

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookreel/internal/media"
)

//go:embed overrides.yaml
var defaultData []byte

// minGenres is the genre count below which Patch substitutes curated genres.
const minGenres = 3

// Words ignored by the fuzzy title match.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "and": true,
	"in": true, "on": true, "to": true, "for": true,
}

// Entry is one curated title.
type Entry struct {
	Key           string   `yaml:"key"`
	Title         string   `yaml:"title"`
	Genres        []string `yaml:"genres"`
	RelatedBooks  []string `yaml:"related_books"`
	RelatedMovies []string `yaml:"related_movies"`
}

// Table is an ordered, read-only list of entries. The first matching entry wins.
type Table struct {
	entries []Entry
}

// Parse reads a YAML list of entries.
func Parse(data []byte) (*Table, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse curated entries: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		e.Key = strings.ToLower(strings.TrimSpace(e.Key))
		if e.Key == "" {
			return nil, fmt.Errorf("curated entry %d has no key", i)
		}
		if e.Title == "" {
			e.Title = e.Key
		}
		for j, g := range e.Genres {
			e.Genres[j] = strings.ToLower(strings.TrimSpace(g))
		}
	}

	return &Table{entries: entries}, nil
}

// Default returns the embedded table.
func Default() *Table {
	t, err := Parse(defaultData)
	if err != nil {
		// The embedded document is covered by tests
		panic(err)
	}
	return t
}

// Load returns the embedded table, preceded by the entries of extraFile when
// it is set so that they take precedence.
func Load(extraFile string) (*Table, error) {
	base := Default()
	if extraFile == "" {
		return base, nil
	}

	data, err := os.ReadFile(extraFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read curated file %s: %w", extraFile, err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", extraFile, err)
	}

	return &Table{entries: slices.Concat(extra.entries, base.entries)}, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Match finds the curated entry for a title, trying in order: containment of
// the key or display title in the title, word overlap with the key or display
// title, and containment of the key or display title in the description.
func (t *Table) Match(title, description string) (*Entry, bool) {
	if t == nil {
		return nil, false
	}

	lowerTitle := strings.ToLower(strings.TrimSpace(title))
	if lowerTitle != "" {
		for i := range t.entries {
			e := &t.entries[i]
			if strings.Contains(lowerTitle, e.Key) || strings.Contains(lowerTitle, strings.ToLower(e.Title)) {
				return e, true
			}
		}

		titleWords := words(lowerTitle)
		for i := range t.entries {
			e := &t.entries[i]
			if overlapEnough(titleWords, words(e.Key)) || overlapEnough(titleWords, words(strings.ToLower(e.Title))) {
				return e, true
			}
		}
	}

	lowerDesc := strings.ToLower(description)
	if strings.TrimSpace(lowerDesc) != "" {
		for i := range t.entries {
			e := &t.entries[i]
			if strings.Contains(lowerDesc, e.Key) || strings.Contains(lowerDesc, strings.ToLower(e.Title)) {
				return e, true
			}
		}
	}

	return nil, false
}

// Patch fills in curated genres for items with fewer than three and
// synthesizes a description when it is missing. Identity fields are never touched.
func (t *Table) Patch(item media.Item) media.Item {
	e, ok := t.Match(item.Title, item.Description)
	if !ok {
		return item
	}

	if len(item.Genres) < minGenres && len(e.Genres) > 0 {
		item.Genres = slices.Clone(e.Genres)
	}
	if strings.TrimSpace(item.Description) == "" && len(e.Genres) > 0 {
		item.Description = describe(e)
	}
	return item
}

func describe(e *Entry) string {
	genres := e.Genres[:min(len(e.Genres), 3)]
	switch len(genres) {
	case 1:
		return fmt.Sprintf("A celebrated work of %s.", genres[0])
	default:
		return fmt.Sprintf("A celebrated work of %s and %s.",
			strings.Join(genres[:len(genres)-1], ", "), genres[len(genres)-1])
	}
}

func words(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if !stopWords[w] {
			out[w] = true
		}
	}
	return out
}

// overlapEnough reports whether the shared words cover at least half of the
// smaller set.
func overlapEnough(a, b map[string]bool) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	shared := 0
	for w := range a {
		if b[w] {
			shared++
		}
	}
	return shared > 0 && 2*shared >= min(len(a), len(b))
}
