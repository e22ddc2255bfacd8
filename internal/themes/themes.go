// Package themes normalizes genre and subject strings and maps them across the
// book-subject and movie-genre vocabularies.
package themes

import (
	"slices"
	"strings"
	"unicode"
)

// Family is one entry of the cross-media taxonomy: a book genre family and the
// movie genre keywords it corresponds to.
type Family struct {
	Name     string
	Keywords []string
}

// Taxonomy is the fixed cross-media mapping. All strings are normalized.
// No term of one family may contain, or be contained in, a term of another
// family; that keeps Expand a closure.
var Taxonomy = []Family{
	{Name: "adventure", Keywords: []string{"adventure", "quest", "swashbuckler"}},
	{Name: "fantasy", Keywords: []string{"fantasy", "magic", "sorcery"}},
	{Name: "science fiction", Keywords: []string{"science fiction", "scifi", "space opera", "cyberpunk"}},
	{Name: "thriller", Keywords: []string{"thriller", "suspense", "espionage"}},
	{Name: "romance", Keywords: []string{"romance", "love story", "romantic"}},
	{Name: "horror", Keywords: []string{"horror", "supernatural", "ghost"}},
	{Name: "historical", Keywords: []string{"historical", "history", "period piece"}},
	{Name: "war", Keywords: []string{"war", "military", "battle"}},
	{Name: "philosophical", Keywords: []string{"philosophical", "philosophy", "existential"}},
	{Name: "dystopian", Keywords: []string{"dystopian", "dystopia", "totalitarian"}},
	{Name: "mystery", Keywords: []string{"mystery", "detective", "crime"}},
	{Name: "drama", Keywords: []string{"drama", "melodrama", "tragedy"}},
	{Name: "action", Keywords: []string{"action", "martial arts", "heist"}},
}

// genericWords are subjects that say nothing about what a work is about.
var genericWords = []string{
	"sequel",
	"bestseller",
	"best seller",
	"paperback",
	"hardcover",
	"ebook",
	"audiobook",
	"edition",
	"series",
	"volume",
	"collection",
	"award",
	"prize",
	"new york times",
	"reviewed",
	"accessible book",
	"protected daisy",
	"in library",
	"large type",
	"open library",
	"reading level",
	"juvenile",
	"translations",
	"staff picks",
	"popular",
}

// Normalize strips punctuation, collapses whitespace and lowercases the term.
func Normalize(term string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, term)
	return strings.ToLower(strings.Join(strings.Fields(stripped), " "))
}

// NormalizeAll normalizes every term, dropping empty results and duplicates
// while keeping first-seen order.
func NormalizeAll(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		n := Normalize(term)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Set is an unordered collection of normalized terms.
type Set map[string]struct{}

// NewSet builds a Set from already normalized terms.
func NewSet(terms ...string) Set {
	s := make(Set, len(terms))
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add inserts a term; empty terms are ignored.
func (s Set) Add(term string) {
	if term != "" {
		s[term] = struct{}{}
	}
}

// Has reports whether term is in the set.
func (s Set) Has(term string) bool {
	_, ok := s[term]
	return ok
}

// Intersect returns the number of terms present in both sets.
func (s Set) Intersect(other Set) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for term := range small {
		if large.Has(term) {
			n++
		}
	}
	return n
}

// Sorted returns the terms in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for term := range s {
		out = append(out, term)
	}
	slices.Sort(out)
	return out
}

// Families returns the taxonomy family names present in the set, in taxonomy order.
func (s Set) Families() []string {
	var out []string
	for _, f := range Taxonomy {
		if s.Has(f.Name) {
			out = append(out, f.Name)
		}
	}
	return out
}

// QueryOrder returns family names first (taxonomy order) followed by the
// remaining terms sorted.
func (s Set) QueryOrder() []string {
	families := s.Families()
	out := slices.Clone(families)
	for _, term := range s.Sorted() {
		if !slices.Contains(families, term) {
			out = append(out, term)
		}
	}
	return out
}

// Expand maps genres onto the taxonomy. Every genre that matches a family
// (family name or keyword, substring containment in either direction) pulls in
// the family name and all of its keywords. The normalized genre itself is
// always included.
func Expand(genres []string) Set {
	out := make(Set)
	for _, genre := range genres {
		g := Normalize(genre)
		if g == "" {
			continue
		}
		out.Add(g)

		for _, f := range Taxonomy {
			if !matchesFamily(g, f) {
				continue
			}
			out.Add(f.Name)
			for _, k := range f.Keywords {
				out.Add(k)
			}
		}
	}
	return out
}

// ExpandSet re-expands the members of a set.
func ExpandSet(s Set) Set {
	return Expand(s.Sorted())
}

func matchesFamily(genre string, f Family) bool {
	if overlaps(genre, f.Name) {
		return true
	}
	for _, k := range f.Keywords {
		if overlaps(genre, k) {
			return true
		}
	}
	return false
}

func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// FilterGeneric drops terms that contain a non-discriminative word, keeping order.
func FilterGeneric(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if !isGeneric(term) {
			out = append(out, term)
		}
	}
	return out
}

func isGeneric(term string) bool {
	lower := strings.ToLower(term)
	for _, w := range genericWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
