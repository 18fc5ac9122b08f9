package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	got := StripTags("<p>Hello <strong>world</strong></p><p>again &amp; again</p>")
	assert.Equal(t, []string{"Hello", "world", "again", "&", "again"}, strings.Fields(got))
}

func TestReadTime(t *testing.T) {
	words := func(n int) string {
		return "<p>" + strings.TrimSpace(strings.Repeat("word ", n)) + "</p>"
	}

	tests := []struct {
		name     string
		fragment string
		want     int
	}{
		{"empty fragment", "", 1},
		{"markup only", "<p><br></p>", 1},
		{"one word", words(1), 1},
		{"exactly 200", words(200), 1},
		{"201 words", words(201), 2},
		{"1000 words", words(1000), 5},
		{"split across blocks", words(150) + words(150), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadTime(tt.fragment))
		})
	}
}

func TestHasText(t *testing.T) {
	assert.False(t, HasText("<p>  </p><hr>"))
	assert.True(t, HasText("<h2>x</h2>"))
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Getting Started with React Hooks", "getting-started-with-react-hooks"},
		{"  Hello,   World!  ", "hello-world"},
		{"Crème brûlée recipes", "creme-brulee-recipes"},
		{"Go -- the good parts", "go-the-good-parts"},
		{"snake_case title", "snake-case-title"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.title))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "the quick...", Truncate("the quick brown fox", 12))
	assert.Equal(t, "héllo...", Truncate("héllo wörld", 8))
}

func TestExcerpt(t *testing.T) {
	got := Excerpt("<h2>Intro</h2>\n<p>React Hooks changed everything about components</p>", 30)
	assert.Equal(t, "Intro React Hooks changed...", got)
}
