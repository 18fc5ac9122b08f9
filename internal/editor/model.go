// Package editor holds the rich-text document model behind the post editor:
// parsing and serializing HTML fragments, selections, the toolbar command
// set, prompt-driven insertions and the Surface that ties them to a host.
package editor

import (
	"strings"
	"unicode/utf8"
)

// Mark is a set of inline formatting flags
type Mark uint8

const (
	Bold Mark = 1 << iota
	Italic
	Underline
	Strike
	Code
)

// markOrder is the nesting order used when serializing, outermost first
var markOrder = []Mark{Bold, Italic, Underline, Strike, Code}

// Has reports whether every flag in m is set
func (k Mark) Has(m Mark) bool { return k&m == m }

// Run is a stretch of text sharing the same marks and link
type Run struct {
	Text  string
	Marks Mark
	Href  string
}

func (r Run) sameStyle(o Run) bool {
	return r.Marks == o.Marks && r.Href == o.Href
}

// BlockKind identifies the type of a top-level block
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading1
	Heading2
	Heading3
	Quote
	BulletItem
	NumberedItem
	CodeBlock
	Divider
	Image
)

var blockKindNames = map[BlockKind]string{
	Paragraph:    "paragraph",
	Heading1:     "heading1",
	Heading2:     "heading2",
	Heading3:     "heading3",
	Quote:        "quote",
	BulletItem:   "bullet",
	NumberedItem: "numbered",
	CodeBlock:    "code",
	Divider:      "divider",
	Image:        "image",
}

func (k BlockKind) String() string {
	if name, ok := blockKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Atomic blocks hold no text and cannot contain the caret beyond offset 0
func (k BlockKind) Atomic() bool { return k == Divider || k == Image }

// Formattable blocks accept inline marks and block-kind commands
func (k BlockKind) Formattable() bool { return !k.Atomic() && k != CodeBlock }

// Block is one top-level unit of a document. Code blocks keep their source
// as a single unmarked run.
type Block struct {
	Kind     BlockKind
	Runs     []Run
	Language string // code blocks
	Src      string // images
	Alt      string // images
	Caption  string // images
}

// Text returns the plain text of the block
func (b *Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Len returns the length of the block in runes
func (b *Block) Len() int {
	n := 0
	for _, r := range b.Runs {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

func (b Block) clone() Block {
	b.Runs = append([]Run(nil), b.Runs...)
	return b
}

// Document is a flat sequence of blocks
type Document struct {
	Blocks []Block
}

// NewDocument returns a document holding a single empty paragraph
func NewDocument() *Document {
	return &Document{Blocks: []Block{{Kind: Paragraph}}}
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	c := &Document{Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		c.Blocks[i] = b.clone()
	}
	return c
}

// Text returns the plain text of the document, one line per block
func (d *Document) Text() string {
	lines := make([]string, 0, len(d.Blocks))
	for i := range d.Blocks {
		lines = append(lines, d.Blocks[i].Text())
	}
	return strings.Join(lines, "\n")
}

// normalizeRuns merges adjacent runs of the same style and drops empty ones
func normalizeRuns(runs []Run) []Run {
	out := runs[:0:0]
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].sameStyle(r) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// splitRunsAt cuts runs at rune offset off and returns the parts before and
// after it.
func splitRunsAt(runs []Run, off int) (before, after []Run) {
	pos := 0
	for i, r := range runs {
		n := utf8.RuneCountInString(r.Text)
		switch {
		case off <= pos:
			after = append(after, runs[i:]...)
			return before, after
		case off < pos+n:
			cut := byteOffset(r.Text, off-pos)
			head, tail := r, r
			head.Text, tail.Text = r.Text[:cut], r.Text[cut:]
			before = append(before, head)
			after = append(after, tail)
			after = append(after, runs[i+1:]...)
			return before, after
		}
		before = append(before, r)
		pos += n
	}
	return before, after
}

// sliceRuns returns copies of the runs covering [start, end)
func sliceRuns(runs []Run, start, end int) (head, mid, tail []Run) {
	head, rest := splitRunsAt(runs, start)
	mid, tail = splitRunsAt(rest, end-start)
	return head, mid, tail
}

// styleAt returns the style a character typed at off should inherit
func styleAt(runs []Run, off int) Run {
	pos := 0
	for i, r := range runs {
		n := utf8.RuneCountInString(r.Text)
		if off <= pos+n && (off > pos || i == 0) {
			return Run{Marks: r.Marks, Href: r.Href}
		}
		pos += n
	}
	return Run{}
}

func byteOffset(s string, runeOff int) int {
	if runeOff <= 0 {
		return 0
	}
	i := 0
	for b := range s {
		if i == runeOff {
			return b
		}
		i++
	}
	return len(s)
}
