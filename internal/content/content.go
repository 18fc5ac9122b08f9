// Package content holds the text measurements shared by the editor and the
// post service, so that both sides derive identical values from a fragment.
package content

import (
	"html"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// WordsPerMinute is the reading speed behind ReadTime
const WordsPerMinute = 200

var (
	tagRegex       = regexp.MustCompile(`<[^>]*>`)
	slugStripRegex = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegex = regexp.MustCompile(`[\s_]+`)
	slugDashRegex  = regexp.MustCompile(`-+`)
	trailingWord   = regexp.MustCompile(`\s+\S*$`)
)

// StripTags removes markup from an HTML fragment and decodes entities.
// Tags become whitespace so adjacent blocks do not fuse into one word.
func StripTags(fragment string) string {
	return html.UnescapeString(tagRegex.ReplaceAllString(fragment, " "))
}

// WordCount counts whitespace-separated words in plain text
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadTime returns the estimated minutes to read a fragment:
// max(1, ceil(words / 200)).
func ReadTime(fragment string) int {
	return ReadTimeForWords(WordCount(StripTags(fragment)))
}

// ReadTimeForWords applies the read time formula to a known word count
func ReadTimeForWords(words int) int {
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// HasText reports whether a fragment contains any visible text
func HasText(fragment string) bool {
	return strings.TrimSpace(StripTags(fragment)) != ""
}

// GenerateSlug derives a URL-safe slug from a title: accents are folded,
// everything is lowercased, runs of whitespace become single hyphens and
// other punctuation is dropped.
func GenerateSlug(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	slug := strings.ToLower(strings.TrimSpace(folded))
	slug = slugSpaceRegex.ReplaceAllString(slug, "-")
	slug = slugStripRegex.ReplaceAllString(slug, "")
	slug = slugDashRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Truncate shortens text to at most maxLength bytes on a word boundary,
// appending "..." when anything was cut.
func Truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	cut := text[:maxLength]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return trailingWord.ReplaceAllString(cut, "") + "..."
}

// Excerpt returns a plain-text teaser of a fragment
func Excerpt(fragment string, maxLength int) string {
	plain := strings.Join(strings.Fields(StripTags(fragment)), " ")
	return Truncate(plain, maxLength)
}
