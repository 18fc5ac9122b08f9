package editor

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a document from an HTML fragment. Unknown elements are
// flattened into their children; script and style subtrees are dropped.
// Whitespace in text collapses the way a browser shows it, so only br
// elements become line breaks. An empty fragment yields a document with
// one empty paragraph.
func Parse(fragment string) (*Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}

	p := &parser{}
	p.blocks(nodes)
	p.flush()

	if len(p.out) == 0 {
		return NewDocument(), nil
	}
	return &Document{Blocks: p.out}, nil
}

// MustParse is Parse for fragments known to be well formed
func MustParse(fragment string) *Document {
	doc, err := Parse(fragment)
	if err != nil {
		panic(err)
	}
	return doc
}

type parser struct {
	out     []Block
	pending []Run // loose inline content awaiting a paragraph
}

func (p *parser) flush() {
	runs := collapseSpace(p.pending)
	p.pending = nil
	if strings.TrimSpace(runsText(runs)) == "" {
		return
	}
	p.out = append(p.out, Block{Kind: Paragraph, Runs: runs})
}

func (p *parser) emit(b Block) {
	p.flush()
	if b.Kind != CodeBlock {
		b.Runs = normalizeRuns(b.Runs)
	}
	p.out = append(p.out, b)
}

func (p *parser) blocks(nodes []*html.Node) {
	for _, n := range nodes {
		p.block(n)
	}
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func (p *parser) block(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" && len(p.pending) == 0 {
			return
		}
		p.pending = append(p.pending, Run{Text: collapseWhitespace(n.Data)})
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Meta, atom.Link, atom.Template:
		return
	case atom.P:
		p.textBlock(Paragraph, inlineContent(children(n)))
	case atom.H1:
		p.textBlock(Heading1, inlineContent(children(n)))
	case atom.H2:
		p.textBlock(Heading2, inlineContent(children(n)))
	case atom.H3, atom.H4, atom.H5, atom.H6:
		p.textBlock(Heading3, inlineContent(children(n)))
	case atom.Blockquote:
		p.quote(n)
	case atom.Ul:
		p.list(n, BulletItem)
	case atom.Ol:
		p.list(n, NumberedItem)
	case atom.Pre:
		p.emit(codeBlockFrom(n, ""))
	case atom.Hr:
		p.emit(Block{Kind: Divider})
	case atom.Img:
		p.emit(imageFrom(n, nil))
	case atom.Figure:
		p.figure(n)
	case atom.Div:
		if hasClass(n, "code-block") {
			p.codeWrapper(n)
			return
		}
		if label, pre, ok := labelledCode(n); ok {
			p.emit(codeBlockFrom(pre, label))
			return
		}
		p.flush()
		p.blocks(children(n))
		p.flush()
	default:
		if isInline(n.DataAtom) {
			collectInline(n, 0, "", p)
			return
		}
		p.blocks(children(n))
	}
}

func (p *parser) quote(n *html.Node) {
	sub := &parser{}
	sub.blocks(children(n))
	sub.flush()
	p.flush()
	for _, b := range sub.out {
		if b.Kind.Formattable() {
			b.Kind = Quote
		}
		p.out = append(p.out, b)
	}
}

func (p *parser) list(n *html.Node, kind BlockKind) {
	p.flush()
	for _, li := range children(n) {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			if li.Type == html.ElementNode && (li.DataAtom == atom.Ul || li.DataAtom == atom.Ol) {
				p.block(li)
			}
			continue
		}
		var inline, nested []*html.Node
		for _, c := range children(li) {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, c)
				continue
			}
			inline = append(inline, c)
		}
		p.textBlock(kind, inlineContent(inline))
		for _, c := range nested {
			p.block(c)
		}
	}
}

func (p *parser) figure(n *html.Node) {
	var img *html.Node
	var caption *html.Node
	walk(n, func(c *html.Node) {
		switch c.DataAtom {
		case atom.Img:
			if img == nil {
				img = c
			}
		case atom.Figcaption:
			if caption == nil {
				caption = c
			}
		}
	})
	if img == nil {
		p.flush()
		p.blocks(children(n))
		return
	}
	p.emit(imageFrom(img, caption))
}

func (p *parser) codeWrapper(n *html.Node) {
	lang := attr(n, "data-language")
	var pre *html.Node
	walk(n, func(c *html.Node) {
		if pre == nil && c.DataAtom == atom.Pre {
			pre = c
		}
	})
	if pre == nil {
		p.emit(Block{Kind: CodeBlock, Language: lang})
		return
	}
	p.emit(codeBlockFrom(pre, lang))
}

// labelledCode matches a wrapper div holding a text-only label div followed
// by a pre, the shape older posts store code blocks in
func labelledCode(n *html.Node) (string, *html.Node, bool) {
	var elems []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return "", nil, false
			}
		case html.ElementNode:
			elems = append(elems, c)
		}
	}
	if len(elems) != 2 || elems[0].DataAtom != atom.Div || elems[1].DataAtom != atom.Pre {
		return "", nil, false
	}
	for c := elems[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return "", nil, false
		}
	}
	label := strings.TrimSpace(textContent(elems[0]))
	if label == "" {
		return "", nil, false
	}
	return label, elems[1], true
}

func codeBlockFrom(pre *html.Node, lang string) Block {
	var sb strings.Builder
	var text func(*html.Node)
	text = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			sb.WriteString("\n")
		case n.Type == html.ElementNode:
			if lang == "" && n.DataAtom == atom.Code {
				lang = languageClass(n)
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				text(c)
			}
		}
	}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		text(c)
	}

	b := Block{Kind: CodeBlock, Language: strings.ToLower(lang)}
	if code := sb.String(); code != "" {
		b.Runs = []Run{{Text: code}}
	}
	return b
}

func imageFrom(img, caption *html.Node) Block {
	b := Block{Kind: Image, Src: attr(img, "src"), Alt: attr(img, "alt")}
	if caption != nil {
		b.Caption = strings.Join(strings.Fields(textContent(caption)), " ")
	}
	return b
}

// inlineSink receives inline content in document order
type inlineSink interface {
	text(r Run)
	image(img *html.Node)
}

func (p *parser) text(r Run) { p.pending = append(p.pending, r) }

func (p *parser) image(img *html.Node) { p.emit(imageFrom(img, nil)) }

// segments is inline content cut wherever an image interrupts it. There is
// always one more part than images.
type segments struct {
	parts  [][]Run
	images []*html.Node
}

func (s *segments) text(r Run) {
	last := len(s.parts) - 1
	s.parts[last] = append(s.parts[last], r)
}

func (s *segments) image(img *html.Node) {
	s.images = append(s.images, img)
	s.parts = append(s.parts, nil)
}

func inlineContent(nodes []*html.Node) *segments {
	s := &segments{parts: [][]Run{nil}}
	for _, c := range nodes {
		collectInline(c, 0, "", s)
	}
	return s
}

// textBlock emits s as a block of kind. Images inside it become blocks of
// their own, with the text around them continuing in blocks of kind.
func (p *parser) textBlock(kind BlockKind, s *segments) {
	if len(s.images) == 0 {
		p.emit(Block{Kind: kind, Runs: collapseSpace(s.parts[0])})
		return
	}
	for i, part := range s.parts {
		if i > 0 {
			p.emit(imageFrom(s.images[i-1], nil))
		}
		if runs := collapseSpace(part); len(runs) > 0 {
			p.emit(Block{Kind: kind, Runs: runs})
		}
	}
}

func collectInline(n *html.Node, marks Mark, href string, sink inlineSink) {
	switch n.Type {
	case html.TextNode:
		sink.text(Run{Text: collapseWhitespace(n.Data), Marks: marks, Href: href})
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style:
		return
	case atom.Img:
		sink.image(n)
		return
	case atom.Br:
		sink.text(Run{Text: "\n", Marks: marks, Href: href})
		return
	case atom.B, atom.Strong:
		marks |= Bold
	case atom.I, atom.Em:
		marks |= Italic
	case atom.U:
		marks |= Underline
	case atom.S, atom.Strike, atom.Del:
		marks |= Strike
	case atom.Code:
		marks |= Code
	case atom.A:
		if h := attr(n, "href"); h != "" {
			href = h
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectInline(c, marks, href, sink)
	}
}

// collapseWhitespace folds each run of HTML whitespace in a text node into
// one space. Line breaks only come from br elements.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	space := false
	for _, c := range s {
		switch c {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(c)
	}
	return sb.String()
}

// collapseSpace drops the spaces a browser would not show: a space after
// another space, a line break or the block start, and a space before a
// line break or the block end. Non-breaking spaces come out as plain spaces.
func collapseSpace(runs []Run) []Run {
	type char struct {
		r   rune
		run int
	}
	var kept []char
	prev := '\n'
	for i, run := range runs {
		for _, c := range run.Text {
			if c == ' ' && (prev == ' ' || prev == '\n') {
				continue
			}
			if n := len(kept); c == '\n' && n > 0 && kept[n-1].r == ' ' {
				kept = kept[:n-1]
			}
			kept = append(kept, char{c, i})
			prev = c
		}
	}
	if n := len(kept); n > 0 && kept[n-1].r == ' ' {
		kept = kept[:n-1]
	}

	texts := make([]strings.Builder, len(runs))
	for _, k := range kept {
		if k.r == nbsp {
			k.r = ' '
		}
		texts[k.run].WriteRune(k.r)
	}
	out := make([]Run, len(runs))
	for i, run := range runs {
		run.Text = texts[i].String()
		out[i] = run
	}
	return normalizeRuns(out)
}

func isInline(a atom.Atom) bool {
	switch a {
	case atom.B, atom.Strong, atom.I, atom.Em, atom.U, atom.S, atom.Strike, atom.Del,
		atom.Code, atom.A, atom.Span, atom.Br, atom.Font, atom.Mark, atom.Small, atom.Sub, atom.Sup:
		return true
	}
	return false
}

func walk(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fn(c)
		}
		walk(c, fn)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func languageClass(n *html.Node) string {
	for _, c := range strings.Fields(attr(n, "class")) {
		if strings.HasPrefix(c, "language-") {
			return strings.TrimPrefix(c, "language-")
		}
	}
	return ""
}

func runsText(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}
