package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/personal-blog-api/internal/editor"
)

const caretGlyph = " "

// renderDocument draws doc for the terminal, marking the selection and,
// when showCaret is set, the caret.
func renderDocument(doc *editor.Document, sel editor.Range, showCaret bool, width int) string {
	lines := make([]string, 0, len(doc.Blocks))
	number := 0
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		if b.Kind == editor.NumberedItem {
			number++
		} else {
			number = 0
		}
		caretHere := showCaret && sel.Focus.Block == i
		lines = append(lines, renderBlock(b, i, number, sel, caretHere, width))
	}
	return strings.Join(lines, "\n")
}

func renderBlock(b *editor.Block, idx, number int, sel editor.Range, caretHere bool, width int) string {
	switch b.Kind {
	case editor.Divider:
		line := dividerStyle.Render(strings.Repeat("─", max(8, min(width, 40))))
		if caretHere {
			line += caretStyle.Render(caretGlyph)
		}
		return line
	case editor.Image:
		line := fmt.Sprintf("[image: %s] %s", b.Alt, b.Src)
		if b.Caption != "" {
			line += " · " + b.Caption
		}
		if caretHere {
			line += caretStyle.Render(caretGlyph)
		}
		return line
	case editor.CodeBlock:
		label := ""
		if b.Language != "" {
			label = codeLabelStyle.Render(strings.ToUpper(b.Language)) + "\n"
		}
		return label + codeBlockStyle.Render(runsView(b, idx, sel, caretHere, lipgloss.NewStyle()))
	}

	prefix, base := "", lipgloss.NewStyle()
	switch b.Kind {
	case editor.Heading1:
		prefix, base = "# ", headingStyle
	case editor.Heading2:
		prefix, base = "## ", headingStyle
	case editor.Heading3:
		prefix, base = "### ", headingStyle
	case editor.Quote:
		prefix, base = "│ ", quoteStyle
	case editor.BulletItem:
		prefix = "• "
	case editor.NumberedItem:
		prefix = fmt.Sprintf("%d. ", number)
	}
	return prefix + runsView(b, idx, sel, caretHere, base)
}

type runeStyle struct {
	marks    editor.Mark
	link     bool
	selected bool
}

func (rs runeStyle) apply(base lipgloss.Style) lipgloss.Style {
	st := base
	if rs.marks.Has(editor.Bold) {
		st = st.Bold(true)
	}
	if rs.marks.Has(editor.Italic) {
		st = st.Italic(true)
	}
	if rs.marks.Has(editor.Underline) {
		st = st.Underline(true)
	}
	if rs.marks.Has(editor.Strike) {
		st = st.Strikethrough(true)
	}
	if rs.marks.Has(editor.Code) {
		st = st.Inherit(inlineCode)
	}
	if rs.link {
		st = st.Inherit(linkStyle)
	}
	if rs.selected {
		st = st.Reverse(true)
	}
	return st
}

// runsView renders the runs of a text block, grouping runes of equal style
func runsView(b *editor.Block, idx int, sel editor.Range, caretHere bool, base lipgloss.Style) string {
	var sb strings.Builder
	start, end := sel.Start(), sel.End()

	var group strings.Builder
	var current runeStyle
	flush := func() {
		if group.Len() > 0 {
			sb.WriteString(current.apply(base).Render(group.String()))
			group.Reset()
		}
	}

	offset := 0
	for _, r := range b.Runs {
		for _, ch := range r.Text {
			if caretHere && sel.Collapsed() && sel.Focus.Offset == offset {
				flush()
				sb.WriteString(caretStyle.Render(caretGlyph))
			}
			pos := editor.Pos{Block: idx, Offset: offset}
			st := runeStyle{
				marks:    r.Marks,
				link:     r.Href != "",
				selected: !sel.Collapsed() && !pos.Before(start) && pos.Before(end),
			}
			if st != current {
				flush()
				current = st
			}
			group.WriteRune(ch)
			offset++
		}
	}
	flush()
	if caretHere && sel.Collapsed() && sel.Focus.Offset >= offset {
		sb.WriteString(caretStyle.Render(caretGlyph))
	}
	return sb.String()
}
