package themes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Science Fiction", want: "science fiction"},
		{name: "strips punctuation", input: "Sci-Fi!", want: "scifi"},
		{name: "collapses whitespace", input: "  space   opera \t", want: "space opera"},
		{name: "drops symbols", input: "Action & Adventure", want: "action adventure"},
		{name: "empty", input: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeAll_DedupesInOrder(t *testing.T) {
	got := NormalizeAll([]string{"Fantasy", "fantasy!", "", "Magic"})
	assert.Equal(t, []string{"fantasy", "magic"}, got)
}

func TestExpand_AddsFamilyAndKeywords(t *testing.T) {
	got := Expand([]string{"Science Fiction"})

	for _, term := range []string{"science fiction", "scifi", "space opera", "cyberpunk"} {
		assert.True(t, got.Has(term), "missing %q", term)
	}
	assert.False(t, got.Has("fantasy"))
}

func TestExpand_MatchesEitherDirection(t *testing.T) {
	// genre contains a keyword
	got := Expand([]string{"Epic space opera saga"})
	assert.True(t, got.Has("science fiction"))
	assert.True(t, got.Has("epic space opera saga"))

	// keyword contains the genre
	got = Expand([]string{"Dystopia"})
	assert.True(t, got.Has("dystopian"))
	assert.True(t, got.Has("totalitarian"))
}

func TestExpand_KeepsUnmatchedGenre(t *testing.T) {
	got := Expand([]string{"Cooking"})
	assert.Equal(t, []string{"cooking"}, got.Sorted())
}

func TestExpand_MovieGenresReachBookFamilies(t *testing.T) {
	got := Expand([]string{"Crime", "War"})
	assert.Equal(t, []string{"war", "mystery"}, got.Families())
}

func TestExpand_IsClosure(t *testing.T) {
	inputs := [][]string{
		{"Science Fiction", "Adventure"},
		{"Fantasy fiction", "Magic", "Quests (Expeditions)"},
		{"Thriller", "Crime", "Drama"},
		{"Love stories", "Historical fiction", "War stories"},
		{"Philosophy", "Dystopias", "Horror tales"},
		{"Action", "Heist", "Martial arts films"},
		{"Cooking"},
	}

	for _, in := range inputs {
		once := Expand(in)
		twice := ExpandSet(once)
		assert.Equal(t, once.Sorted(), twice.Sorted(), "input %v", in)
	}
}

func TestTaxonomy_IsCrossFamilySubstringFree(t *testing.T) {
	terms := func(f Family) []string {
		return append([]string{f.Name}, f.Keywords...)
	}

	for i, a := range Taxonomy {
		assert.GreaterOrEqual(t, len(a.Keywords), 2, a.Name)
		assert.LessOrEqual(t, len(a.Keywords), 4, a.Name)
		for j, b := range Taxonomy {
			if i == j {
				continue
			}
			for _, ta := range terms(a) {
				for _, tb := range terms(b) {
					assert.False(t, strings.Contains(ta, tb), "%q (%s) contains %q (%s)", ta, a.Name, tb, b.Name)
				}
			}
		}
	}
}

func TestTaxonomy_FamilySizes(t *testing.T) {
	for _, f := range Taxonomy {
		want := 3
		if f.Name == "science fiction" {
			want = 4
		}
		assert.Len(t, f.Keywords, want, f.Name)
		assert.Equal(t, f.Name, f.Keywords[0], "family key leads its keywords")
	}
}

func TestSet_QueryOrder(t *testing.T) {
	s := NewSet("zombies", "war", "adventure", "quest", "battle")
	assert.Equal(t, []string{"adventure", "war", "battle", "quest", "zombies"}, s.QueryOrder())
}

func TestSet_Intersect(t *testing.T) {
	a := NewSet("fantasy", "magic", "quest")
	b := NewSet("magic", "quest", "war")
	assert.Equal(t, 2, a.Intersect(b))
	assert.Equal(t, 2, b.Intersect(a))
	assert.Equal(t, 0, a.Intersect(NewSet()))
}

func TestFilterGeneric(t *testing.T) {
	in := []string{
		"Science fiction",
		"Accessible book",
		"Protected DAISY",
		"Space opera",
		"New York Times bestseller",
		"Hugo Award winner",
		"Fantasy",
	}
	assert.Equal(t, []string{"Science fiction", "Space opera", "Fantasy"}, FilterGeneric(in))
}
