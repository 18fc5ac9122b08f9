package editor

import "strings"

// Pos is a caret position: a block index and a rune offset inside it
type Pos struct {
	Block  int
	Offset int
}

// Before reports whether p sorts strictly before q
func (p Pos) Before(q Pos) bool {
	if p.Block != q.Block {
		return p.Block < q.Block
	}
	return p.Offset < q.Offset
}

// Range is a selection from Anchor (where it started) to Focus (where the
// caret is). Anchor may sort after Focus.
type Range struct {
	Anchor Pos
	Focus  Pos
}

// Caret returns a collapsed range at p
func Caret(p Pos) Range { return Range{Anchor: p, Focus: p} }

// Span returns the range from a to b
func Span(a, b Pos) Range { return Range{Anchor: a, Focus: b} }

// Collapsed reports whether the range selects nothing
func (r Range) Collapsed() bool { return r.Anchor == r.Focus }

// Start returns the earlier end of the range
func (r Range) Start() Pos {
	if r.Focus.Before(r.Anchor) {
		return r.Focus
	}
	return r.Anchor
}

// End returns the later end of the range
func (r Range) End() Pos {
	if r.Focus.Before(r.Anchor) {
		return r.Anchor
	}
	return r.Focus
}

// Clamp moves p to the nearest valid position in the document
func (d *Document) Clamp(p Pos) Pos {
	if len(d.Blocks) == 0 {
		return Pos{}
	}
	if p.Block < 0 {
		return Pos{}
	}
	if p.Block >= len(d.Blocks) {
		return d.End()
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if n := d.Blocks[p.Block].Len(); p.Offset > n {
		p.Offset = n
	}
	return p
}

// ClampRange clamps both ends of r
func (d *Document) ClampRange(r Range) Range {
	return Range{Anchor: d.Clamp(r.Anchor), Focus: d.Clamp(r.Focus)}
}

// End returns the position after the last character of the document
func (d *Document) End() Pos {
	if len(d.Blocks) == 0 {
		return Pos{}
	}
	last := len(d.Blocks) - 1
	return Pos{Block: last, Offset: d.Blocks[last].Len()}
}

// SelectAll returns a range covering the whole document
func (d *Document) SelectAll() Range {
	return Span(Pos{}, d.End())
}

// Move shifts p by delta characters, crossing block boundaries. A block
// boundary counts as one step.
func (d *Document) Move(p Pos, delta int) Pos {
	p = d.Clamp(p)
	for ; delta > 0; delta-- {
		if p.Offset < d.Blocks[p.Block].Len() {
			p.Offset++
		} else if p.Block < len(d.Blocks)-1 {
			p = Pos{Block: p.Block + 1}
		}
	}
	for ; delta < 0; delta++ {
		if p.Offset > 0 {
			p.Offset--
		} else if p.Block > 0 {
			p = Pos{Block: p.Block - 1, Offset: d.Blocks[p.Block-1].Len()}
		}
	}
	return p
}

// MoveBlock moves p by delta blocks, keeping the offset where possible
func (d *Document) MoveBlock(p Pos, delta int) Pos {
	return d.Clamp(Pos{Block: p.Block + delta, Offset: p.Offset})
}

// TextIn returns the plain text covered by r, blocks joined by newlines
func (d *Document) TextIn(r Range) string {
	r = d.ClampRange(r)
	start, end := r.Start(), r.End()
	var parts []string
	for i := start.Block; i <= end.Block && i < len(d.Blocks); i++ {
		from, to := 0, d.Blocks[i].Len()
		if i == start.Block {
			from = start.Offset
		}
		if i == end.Block {
			to = end.Offset
		}
		_, mid, _ := sliceRuns(d.Blocks[i].Runs, from, to)
		parts = append(parts, runsText(mid))
	}
	return strings.Join(parts, "\n")
}

// blockSpan returns the offsets selected by r inside block i
func (d *Document) blockSpan(r Range, i int) (from, to int) {
	start, end := r.Start(), r.End()
	from, to = 0, d.Blocks[i].Len()
	if i == start.Block {
		from = start.Offset
	}
	if i == end.Block {
		to = end.Offset
	}
	return from, to
}
