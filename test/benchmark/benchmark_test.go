package benchmark

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/editor"
	"github.com/personal-blog-api/internal/mocks"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/render"
	"github.com/personal-blog-api/internal/service"
	"github.com/personal-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

// articleFragment builds a long post mixing every block kind
func articleFragment(sections int) string {
	var sb strings.Builder
	for i := 0; i < sections; i++ {
		fmt.Fprintf(&sb, "<h2>Section %d</h2>", i)
		sb.WriteString(`<p>Go makes <strong>concurrency</strong> approachable with <em>goroutines</em> and <a href="https://go.dev">channels</a>.</p>`)
		sb.WriteString("<ul><li>first point</li><li>second <code>point</code></li></ul>")
		sb.WriteString("<blockquote><p>Do not communicate by sharing memory.</p></blockquote>")
		sb.WriteString(`<div class="code-block" data-language="go"><pre><code>for i := range ch {
	fmt.Println(i)
}</code></pre></div>`)
		sb.WriteString("<hr>")
	}
	return sb.String()
}

// BenchmarkParse benchmarks building the document model from stored content
func BenchmarkParse(b *testing.B) {
	fragment := articleFragment(50)

	b.ResetTimer()
	b.ReportAllocs()
	b.SetBytes(int64(len(fragment)))

	for i := 0; i < b.N; i++ {
		if _, err := editor.Parse(fragment); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSerialize benchmarks the per-keystroke serialization cost
func BenchmarkSerialize(b *testing.B) {
	doc := editor.MustParse(articleFragment(50))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = editor.Serialize(doc)
	}
}

// BenchmarkTyping benchmarks a keystroke on a long post, including the
// change notification
func BenchmarkTyping(b *testing.B) {
	s, err := editor.NewSurface(articleFragment(50), func(string) {})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := s.InsertText("x"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRender benchmarks rendering a detail page body
func BenchmarkRender(b *testing.B) {
	fragment := articleFragment(50)

	b.ResetTimer()
	b.ReportAllocs()
	b.SetBytes(int64(len(fragment)))

	for i := 0; i < b.N; i++ {
		if _, err := render.Render(fragment); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkReadTime benchmarks the word count behind read time
func BenchmarkReadTime(b *testing.B) {
	fragment := articleFragment(50)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = content.ReadTime(fragment)
	}
}

// BenchmarkGenerateSlug benchmarks slug derivation with accent folding
func BenchmarkGenerateSlug(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = content.GenerateSlug("Café Crème: Brewing Better   Go Services!")
	}
}

// BenchmarkValidation benchmarks the post validation pipeline
func BenchmarkValidation(b *testing.B) {
	post := &models.PostInput{
		Title:   "  Getting Started with Goroutines ",
		Slug:    "Getting-Started-With-Goroutines",
		Summary: "A gentle introduction",
		Content: articleFragment(5),
		Tags:    []string{"go", " ", "concurrency"},
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		in := *post
		validation.NormalizePostInput(&in)
		validation.ValidatePostInput(&in, true)
	}
}

// BenchmarkExport benchmarks streaming export performance
func BenchmarkExport(b *testing.B) {
	repo := mocks.NewMockPostRepository()
	now := time.Now()
	for i := 0; i < 1000; i++ {
		repo.Create(context.Background(), &models.Post{
			ID:          fmt.Sprintf("550e8400-e29b-41d4-a716-%012d", i),
			Slug:        fmt.Sprintf("post-%d", i),
			Title:       fmt.Sprintf("Post %d", i),
			Summary:     "summary",
			Content:     "<p>body</p>",
			ReadTime:    1,
			PublishedAt: now,
		})
	}
	svc := service.NewPostService(repo, zerolog.Nop())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svc.Export(context.Background(), io.Discard, service.FormatNDJSON); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
