// Package render turns stored post fragments into article markup.
package render

import (
	_ "embed"
	"html"
	"html/template"
	"net/url"
	"strings"

	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/editor"
)

//go:embed article.css
var stylesheet string

// Stylesheet returns the CSS for rendered articles, scoped under .article
func Stylesheet() string { return stylesheet }

var markTags = []struct {
	mark editor.Mark
	tag  string
}{
	{editor.Bold, "strong"},
	{editor.Italic, "em"},
	{editor.Underline, "u"},
	{editor.Strike, "s"},
	{editor.Code, "code"},
}

// Render parses a fragment through the editor model and emits article
// markup. Anything the model does not represent, such as scripts, inline
// styles and event attributes, is dropped.
func Render(fragment string) (template.HTML, error) {
	doc, err := editor.Parse(fragment)
	if err != nil {
		return "", err
	}
	return template.HTML(RenderDocument(doc)), nil
}

// RenderDocument emits article markup for doc, one block per line
func RenderDocument(doc *editor.Document) string {
	var sb strings.Builder
	blocks := doc.Blocks
	for i := 0; i < len(blocks); i++ {
		b := &blocks[i]
		switch b.Kind {
		case editor.BulletItem, editor.NumberedItem:
			tag := "ul"
			if b.Kind == editor.NumberedItem {
				tag = "ol"
			}
			sb.WriteString("<" + tag + ">")
			for ; i < len(blocks) && blocks[i].Kind == b.Kind; i++ {
				sb.WriteString("<li>")
				writeRuns(&sb, blocks[i].Runs)
				sb.WriteString("</li>")
			}
			i--
			sb.WriteString("</" + tag + ">")
		case editor.Heading1, editor.Heading2, editor.Heading3:
			tag := map[editor.BlockKind]string{editor.Heading1: "h1", editor.Heading2: "h2", editor.Heading3: "h3"}[b.Kind]
			sb.WriteString("<" + tag)
			if id := content.GenerateSlug(b.Text()); id != "" {
				sb.WriteString(` id="` + id + `"`)
			}
			sb.WriteString(">")
			writeRuns(&sb, b.Runs)
			sb.WriteString("</" + tag + ">")
		case editor.Quote:
			sb.WriteString("<blockquote><p>")
			writeRuns(&sb, b.Runs)
			sb.WriteString("</p></blockquote>")
		case editor.CodeBlock:
			writeCodeBlock(&sb, b)
		case editor.Divider:
			sb.WriteString("<hr>")
		case editor.Image:
			if !safeURL(b.Src) || b.Src == "" {
				continue
			}
			writeImage(&sb, b)
		default:
			if len(b.Runs) == 0 {
				continue
			}
			sb.WriteString("<p>")
			writeRuns(&sb, b.Runs)
			sb.WriteString("</p>")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeCodeBlock(sb *strings.Builder, b *editor.Block) {
	lang := b.Language
	sb.WriteString(`<div class="code-block"`)
	if lang != "" {
		sb.WriteString(` data-language="` + html.EscapeString(lang) + `"`)
	}
	sb.WriteString(">")
	if lang != "" {
		sb.WriteString(`<div class="code-label">` + html.EscapeString(strings.ToUpper(lang)) + `</div>`)
	}
	sb.WriteString("<pre><code")
	if lang != "" {
		sb.WriteString(` class="language-` + html.EscapeString(lang) + `"`)
	}
	sb.WriteString(">" + html.EscapeString(b.Text()) + "</code></pre></div>")
}

func writeImage(sb *strings.Builder, b *editor.Block) {
	sb.WriteString(`<figure><img src="` + html.EscapeString(b.Src) + `" alt="` + html.EscapeString(b.Alt) + `" loading="lazy">`)
	if b.Caption != "" {
		sb.WriteString("<figcaption>" + html.EscapeString(b.Caption) + "</figcaption>")
	}
	sb.WriteString("</figure>")
}

func writeRuns(sb *strings.Builder, runs []editor.Run) {
	runs = editor.HardSpaces(runs)
	for i := 0; i < len(runs); {
		href := runs[i].Href
		j := i
		for j < len(runs) && runs[j].Href == href {
			j++
		}
		linked := href != "" && safeURL(href)
		if linked {
			sb.WriteString(`<a href="` + html.EscapeString(href) + `"`)
			if external(href) {
				sb.WriteString(` target="_blank"`)
			}
			sb.WriteString(` rel="noopener">`)
		}
		for _, r := range runs[i:j] {
			writeRun(sb, r)
		}
		if linked {
			sb.WriteString("</a>")
		}
		i = j
	}
}

func writeRun(sb *strings.Builder, r editor.Run) {
	for _, m := range markTags {
		if r.Marks.Has(m.mark) {
			sb.WriteString("<" + m.tag + ">")
		}
	}
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			sb.WriteString("<br>")
		}
		sb.WriteString(editor.EscapeText(line))
	}
	for i := len(markTags) - 1; i >= 0; i-- {
		if r.Marks.Has(markTags[i].mark) {
			sb.WriteString("</" + markTags[i].tag + ">")
		}
	}
}

// safeURL accepts relative URLs and the http, https and mailto schemes
func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}

func external(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
