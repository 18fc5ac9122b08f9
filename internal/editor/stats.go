package editor

import "github.com/personal-blog-api/internal/content"

// Stats are the live counters shown under the editor
type Stats struct {
	Words    int
	ReadTime int
}

// StatsFor computes stats for a fragment with the same rules the post
// service uses when it stores a post.
func StatsFor(fragment string) Stats {
	words := content.WordCount(content.StripTags(fragment))
	return Stats{Words: words, ReadTime: content.ReadTimeForWords(words)}
}
