package editor

import (
	"html"
	"strings"
)

var markTags = map[Mark]string{
	Bold:      "strong",
	Italic:    "em",
	Underline: "u",
	Strike:    "s",
	Code:      "code",
}

var blockTags = map[BlockKind]string{
	Paragraph: "p",
	Heading1:  "h1",
	Heading2:  "h2",
	Heading3:  "h3",
}

// Serialize emits the canonical HTML fragment for the document.
// Consecutive list items of one kind share a single list element.
func Serialize(doc *Document) string {
	var sb strings.Builder
	blocks := doc.Blocks
	for i := 0; i < len(blocks); i++ {
		b := &blocks[i]
		switch b.Kind {
		case BulletItem, NumberedItem:
			tag := "ul"
			if b.Kind == NumberedItem {
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
		case Quote:
			sb.WriteString("<blockquote><p>")
			writeRuns(&sb, b.Runs)
			sb.WriteString("</p></blockquote>")
		case CodeBlock:
			sb.WriteString(`<div class="code-block"`)
			if b.Language != "" {
				sb.WriteString(` data-language="` + html.EscapeString(b.Language) + `"`)
			}
			sb.WriteString("><pre><code>")
			sb.WriteString(html.EscapeString(b.Text()))
			sb.WriteString("</code></pre></div>")
		case Divider:
			sb.WriteString("<hr>")
		case Image:
			sb.WriteString(`<figure><img src="` + html.EscapeString(b.Src) + `" alt="` + html.EscapeString(b.Alt) + `">`)
			if b.Caption != "" {
				sb.WriteString("<figcaption>" + html.EscapeString(b.Caption) + "</figcaption>")
			}
			sb.WriteString("</figure>")
		default:
			tag := blockTags[b.Kind]
			sb.WriteString("<" + tag + ">")
			writeRuns(&sb, b.Runs)
			sb.WriteString("</" + tag + ">")
		}
	}
	return sb.String()
}

func writeRuns(sb *strings.Builder, runs []Run) {
	runs = HardSpaces(runs)
	for i := 0; i < len(runs); {
		href := runs[i].Href
		j := i
		for j < len(runs) && runs[j].Href == href {
			j++
		}
		if href != "" {
			sb.WriteString(`<a href="` + html.EscapeString(href) + `">`)
		}
		for _, r := range runs[i:j] {
			writeRun(sb, r)
		}
		if href != "" {
			sb.WriteString("</a>")
		}
		i = j
	}
}

func writeRun(sb *strings.Builder, r Run) {
	var open, close []string
	for _, m := range markOrder {
		if r.Marks.Has(m) {
			open = append(open, "<"+markTags[m]+">")
			close = append([]string{"</" + markTags[m] + ">"}, close...)
		}
	}
	sb.WriteString(strings.Join(open, ""))
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			sb.WriteString("<br>")
		}
		sb.WriteString(EscapeText(line))
	}
	sb.WriteString(strings.Join(close, ""))
}

const nbsp = '\u00a0'

// HardSpaces turns the spaces in runs that HTML would collapse into
// non-breaking spaces: one at the start or end of the block, one next to a
// line break, and every space after the first in a row.
func HardSpaces(runs []Run) []Run {
	var text []rune
	for _, r := range runs {
		text = append(text, []rune(r.Text)...)
	}
	out := make([]Run, len(runs))
	pos := 0
	for i, r := range runs {
		rs := []rune(r.Text)
		for j, c := range rs {
			k := pos + j
			if c != ' ' {
				continue
			}
			if k == 0 || k == len(text)-1 || text[k-1] == ' ' || text[k-1] == '\n' || text[k+1] == '\n' {
				rs[j] = nbsp
			}
		}
		pos += len(rs)
		r.Text = string(rs)
		out[i] = r
	}
	return out
}

// EscapeText escapes s for element content, spelling non-breaking spaces
// as entities
func EscapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), string(nbsp), "&nbsp;")
}
