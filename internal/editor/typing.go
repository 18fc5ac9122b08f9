package editor

import "strings"

// DeleteRange removes the selected content, joining the first and last
// touched blocks. It returns the resulting caret.
func (d *Document) DeleteRange(r Range) (Pos, bool) {
	r = d.ClampRange(r)
	start, end := r.Start(), r.End()
	if r.Collapsed() {
		return start, false
	}

	if start.Block == end.Block {
		b := &d.Blocks[start.Block]
		head, _, tail := sliceRuns(b.Runs, start.Offset, end.Offset)
		b.Runs = joinRuns(b.Kind, head, tail)
		return start, true
	}

	first, last := d.Blocks[start.Block], d.Blocks[end.Block]
	var merged Block
	switch {
	case first.Kind.Atomic():
		merged = last.clone()
		_, merged.Runs = splitRunsAt(last.Runs, end.Offset)
		start = Pos{Block: start.Block}
	case last.Kind.Atomic():
		merged = first.clone()
		merged.Runs, _ = splitRunsAt(first.Runs, start.Offset)
	default:
		merged = first.clone()
		head, _ := splitRunsAt(first.Runs, start.Offset)
		_, tail := splitRunsAt(last.Runs, end.Offset)
		merged.Runs = joinRuns(first.Kind, head, tail)
	}

	d.replace(start.Block, end.Block+1, merged)
	return start, true
}

// InsertText types text at the selection, replacing any selected content.
// Newlines split the block.
func (d *Document) InsertText(r Range, text string) (Pos, bool) {
	pos, changed := d.DeleteRange(r)
	if text == "" {
		return pos, changed
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			pos, _ = d.SplitBlock(Caret(pos))
		}
		if line == "" {
			continue
		}
		b := &d.Blocks[pos.Block]
		if b.Kind.Atomic() {
			d.insertBlocksAt(pos.Block+1, Block{Kind: Paragraph})
			pos = Pos{Block: pos.Block + 1}
			b = &d.Blocks[pos.Block]
		}
		style := styleAt(b.Runs, pos.Offset)
		if b.Kind == CodeBlock {
			style = Run{}
		}
		style.Text = line
		pos = d.insertRuns(pos, []Run{style})
	}
	return pos, true
}

// InsertRuns places runs at the caret after deleting the selection
func (d *Document) InsertRuns(r Range, runs []Run) (Pos, bool) {
	pos, _ := d.DeleteRange(r)
	if d.Blocks[pos.Block].Kind.Atomic() {
		d.insertBlocksAt(pos.Block+1, Block{Kind: Paragraph})
		pos = Pos{Block: pos.Block + 1}
	}
	return d.insertRuns(pos, runs), true
}

func (d *Document) insertRuns(pos Pos, runs []Run) Pos {
	b := &d.Blocks[pos.Block]
	head, tail := splitRunsAt(b.Runs, pos.Offset)
	n := 0
	for _, run := range runs {
		if b.Kind == CodeBlock {
			run.Marks, run.Href = 0, ""
		}
		n += (&Block{Runs: []Run{run}}).Len()
	}
	merged := append(append(append([]Run(nil), head...), runs...), tail...)
	b.Runs = joinRuns(b.Kind, merged)
	return Pos{Block: pos.Block, Offset: pos.Offset + n}
}

// DeleteBackward removes the selection, or the character before the caret.
// At the start of a block it joins the block onto the previous one.
func (d *Document) DeleteBackward(r Range) (Pos, bool) {
	if !r.Collapsed() {
		return d.DeleteRange(r)
	}
	pos := d.Clamp(r.Focus)
	if pos.Offset > 0 {
		return d.DeleteRange(Span(Pos{Block: pos.Block, Offset: pos.Offset - 1}, pos))
	}
	if pos.Block == 0 {
		if k := d.Blocks[0].Kind; k != Paragraph && k.Formattable() {
			d.Blocks[0].Kind = Paragraph
			return pos, true
		}
		return pos, false
	}

	prev, cur := &d.Blocks[pos.Block-1], &d.Blocks[pos.Block]
	switch {
	case cur.Kind.Atomic():
		d.remove(pos.Block)
		return Pos{Block: pos.Block - 1, Offset: d.Blocks[pos.Block-1].Len()}, true
	case prev.Kind.Atomic():
		d.remove(pos.Block - 1)
		return Pos{Block: pos.Block - 1}, true
	case cur.Kind != Paragraph && cur.Kind != prev.Kind && cur.Kind.Formattable():
		cur.Kind = Paragraph
		return pos, true
	}

	joined := prev.Len()
	prev.Runs = joinRuns(prev.Kind, prev.Runs, cur.Runs)
	d.remove(pos.Block)
	return Pos{Block: pos.Block - 1, Offset: joined}, true
}

// DeleteForward removes the selection, or the character after the caret.
// At the end of a block it pulls the next block in.
func (d *Document) DeleteForward(r Range) (Pos, bool) {
	if !r.Collapsed() {
		return d.DeleteRange(r)
	}
	pos := d.Clamp(r.Focus)
	cur := &d.Blocks[pos.Block]
	if pos.Offset < cur.Len() {
		return d.DeleteRange(Span(pos, Pos{Block: pos.Block, Offset: pos.Offset + 1}))
	}
	if pos.Block == len(d.Blocks)-1 {
		return pos, false
	}

	next := &d.Blocks[pos.Block+1]
	switch {
	case cur.Kind.Atomic():
		d.remove(pos.Block)
		return Pos{Block: pos.Block}, true
	case next.Kind.Atomic():
		d.remove(pos.Block + 1)
		return pos, true
	}

	cur.Runs = joinRuns(cur.Kind, cur.Runs, next.Runs)
	d.remove(pos.Block + 1)
	return pos, true
}

// SplitBlock breaks the block at the caret (the Enter key). Headings are
// followed by a paragraph, an empty list item leaves the list and code
// blocks take a newline instead.
func (d *Document) SplitBlock(r Range) (Pos, bool) {
	pos, _ := d.DeleteRange(r)
	b := &d.Blocks[pos.Block]

	switch {
	case b.Kind == CodeBlock:
		return d.insertRuns(pos, []Run{{Text: "\n"}}), true
	case b.Kind.Atomic():
		d.insertBlocksAt(pos.Block+1, Block{Kind: Paragraph})
		return Pos{Block: pos.Block + 1}, true
	case (b.Kind == BulletItem || b.Kind == NumberedItem) && b.Len() == 0:
		b.Kind = Paragraph
		return pos, true
	}

	head, tail := splitRunsAt(b.Runs, pos.Offset)
	next := Block{Kind: b.Kind, Runs: normalizeRuns(tail)}
	switch next.Kind {
	case Heading1, Heading2, Heading3:
		if len(next.Runs) == 0 {
			next.Kind = Paragraph
		}
	}
	b.Runs = normalizeRuns(head)
	d.insertBlocksAt(pos.Block+1, next)
	return Pos{Block: pos.Block + 1}, true
}

// InsertBlocks places whole blocks at the caret, splitting the current
// block when the caret is inside it. An empty paragraph at the caret is
// replaced. The returned caret sits at the start of the block after the
// inserted ones, adding an empty paragraph when there is none.
func (d *Document) InsertBlocks(r Range, blocks ...Block) (Pos, bool) {
	if len(blocks) == 0 {
		return d.ClampRange(r).Focus, false
	}
	pos, _ := d.DeleteRange(r)
	b := d.Blocks[pos.Block]

	var at int
	switch {
	case b.Kind == Paragraph && b.Len() == 0:
		d.remove(pos.Block)
		at = pos.Block
	case b.Kind.Atomic():
		at = pos.Block + 1
	case pos.Offset == 0:
		at = pos.Block
	case pos.Offset >= b.Len():
		at = pos.Block + 1
	default:
		head, tail := splitRunsAt(b.Runs, pos.Offset)
		d.Blocks[pos.Block].Runs = joinRuns(b.Kind, head)
		d.insertBlocksAt(pos.Block+1, Block{Kind: b.Kind, Language: b.Language, Runs: joinRuns(b.Kind, tail)})
		at = pos.Block + 1
	}

	d.insertBlocksAt(at, blocks...)
	after := at + len(blocks)
	if after >= len(d.Blocks) || d.Blocks[after].Kind.Atomic() {
		d.insertBlocksAt(after, Block{Kind: Paragraph})
	}
	return Pos{Block: after}, true
}

func (d *Document) insertBlocksAt(i int, blocks ...Block) {
	out := make([]Block, 0, len(d.Blocks)+len(blocks))
	out = append(out, d.Blocks[:i]...)
	out = append(out, blocks...)
	out = append(out, d.Blocks[i:]...)
	d.Blocks = out
}

func (d *Document) remove(i int) {
	d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
	if len(d.Blocks) == 0 {
		d.Blocks = []Block{{Kind: Paragraph}}
	}
}

// replace swaps blocks [from, to) for b
func (d *Document) replace(from, to int, b Block) {
	out := make([]Block, 0, len(d.Blocks)-(to-from)+1)
	out = append(out, d.Blocks[:from]...)
	out = append(out, b)
	out = append(out, d.Blocks[to:]...)
	d.Blocks = out
}

// joinRuns concatenates run lists; code blocks keep a single plain run
func joinRuns(kind BlockKind, parts ...[]Run) []Run {
	var runs []Run
	for _, p := range parts {
		runs = append(runs, p...)
	}
	if kind == CodeBlock {
		text := runsText(runs)
		if text == "" {
			return nil
		}
		return []Run{{Text: text}}
	}
	return normalizeRuns(runs)
}
