package editor

import (
	"fmt"
	"strings"
)

// Command is a toolbar formatting action applied to the selection
type Command int

const (
	CmdBold Command = iota
	CmdItalic
	CmdUnderline
	CmdStrikethrough
	CmdHeading1
	CmdHeading2
	CmdHeading3
	CmdParagraph
	CmdBulletList
	CmdNumberedList
	CmdBlockquote
	CmdRemoveFormat
)

// CommandInfo describes a toolbar entry
type CommandInfo struct {
	Command  Command
	Name     string
	Label    string
	Shortcut string
}

var catalog = []CommandInfo{
	{CmdBold, "bold", "Bold", ShortcutBold},
	{CmdItalic, "italic", "Italic", ShortcutItalic},
	{CmdUnderline, "underline", "Underline", ShortcutUnderline},
	{CmdStrikethrough, "strikethrough", "Strikethrough", ""},
	{CmdHeading1, "h1", "Heading 1", ""},
	{CmdHeading2, "h2", "Heading 2", ""},
	{CmdHeading3, "h3", "Heading 3", ""},
	{CmdParagraph, "paragraph", "Paragraph", ""},
	{CmdBulletList, "bullet-list", "Bullet List", ""},
	{CmdNumberedList, "numbered-list", "Numbered List", ""},
	{CmdBlockquote, "quote", "Quote", ""},
	{CmdRemoveFormat, "clear", "Clear Formatting", ""},
}

// Catalog returns the toolbar commands in display order
func Catalog() []CommandInfo {
	return append([]CommandInfo(nil), catalog...)
}

func (c Command) String() string {
	if int(c) >= 0 && int(c) < len(catalog) {
		return catalog[c].Name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// ParseCommand looks a command up by name
func ParseCommand(name string) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, info := range catalog {
		if info.Name == name {
			return info.Command, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

var markCommands = map[Command]Mark{
	CmdBold:          Bold,
	CmdItalic:        Italic,
	CmdUnderline:     Underline,
	CmdStrikethrough: Strike,
}

var blockCommands = map[Command]BlockKind{
	CmdHeading1:   Heading1,
	CmdHeading2:   Heading2,
	CmdHeading3:   Heading3,
	CmdParagraph:  Paragraph,
	CmdBlockquote: Quote,
}

// Apply runs cmd against r and reports whether the document changed
func (d *Document) Apply(cmd Command, r Range) bool {
	r = d.ClampRange(r)
	if m, ok := markCommands[cmd]; ok {
		return d.ToggleMark(r, m)
	}
	if kind, ok := blockCommands[cmd]; ok {
		return d.SetBlockKind(r, kind)
	}
	switch cmd {
	case CmdBulletList:
		return d.ToggleList(r, BulletItem)
	case CmdNumberedList:
		return d.ToggleList(r, NumberedItem)
	case CmdRemoveFormat:
		return d.RemoveFormatting(r)
	}
	return false
}

// eachSpan calls fn with the selected part of every formattable block in r
func (d *Document) eachSpan(r Range, fn func(i, from, to int)) {
	start, end := r.Start(), r.End()
	for i := start.Block; i <= end.Block; i++ {
		if !d.Blocks[i].Kind.Formattable() {
			continue
		}
		from, to := d.blockSpan(r, i)
		if from < to {
			fn(i, from, to)
		}
	}
}

// restyle rewrites the runs of block i within [from, to)
func (d *Document) restyle(i, from, to int, fn func(Run) Run) {
	head, mid, tail := sliceRuns(d.Blocks[i].Runs, from, to)
	runs := append([]Run(nil), head...)
	for _, run := range mid {
		runs = append(runs, fn(run))
	}
	runs = append(runs, tail...)
	d.Blocks[i].Runs = normalizeRuns(runs)
}

// HasMark reports whether every selected character carries m
func (d *Document) HasMark(r Range, m Mark) bool {
	all, found := true, false
	d.eachSpan(r, func(i, from, to int) {
		_, mid, _ := sliceRuns(d.Blocks[i].Runs, from, to)
		for _, run := range mid {
			found = true
			if !run.Marks.Has(m) {
				all = false
			}
		}
	})
	return found && all
}

// ToggleMark removes m when the whole selection carries it and adds it
// otherwise. A collapsed selection is left alone.
func (d *Document) ToggleMark(r Range, m Mark) bool {
	if r.Collapsed() {
		return false
	}
	if d.HasMark(r, m) {
		return d.setMark(r, m, false)
	}
	return d.setMark(r, m, true)
}

func (d *Document) setMark(r Range, m Mark, on bool) bool {
	changed := false
	d.eachSpan(r, func(i, from, to int) {
		changed = true
		d.restyle(i, from, to, func(run Run) Run {
			if on {
				run.Marks |= m
			} else {
				run.Marks &^= m
			}
			return run
		})
	})
	return changed
}

// SetLink points the selected text at href. An empty href removes links.
func (d *Document) SetLink(r Range, href string) bool {
	if r.Collapsed() {
		return false
	}
	changed := false
	d.eachSpan(r, func(i, from, to int) {
		changed = true
		d.restyle(i, from, to, func(run Run) Run {
			run.Href = href
			return run
		})
	})
	return changed
}

// RemoveFormatting clears inline marks in the selection. Links survive.
func (d *Document) RemoveFormatting(r Range) bool {
	changed := false
	d.eachSpan(r, func(i, from, to int) {
		_, mid, _ := sliceRuns(d.Blocks[i].Runs, from, to)
		for _, run := range mid {
			if run.Marks != 0 {
				changed = true
			}
		}
		d.restyle(i, from, to, func(run Run) Run {
			run.Marks = 0
			return run
		})
	})
	return changed
}

// touched returns the formattable block indexes the range touches
func (d *Document) touched(r Range) []int {
	var out []int
	for i := r.Start().Block; i <= r.End().Block; i++ {
		if d.Blocks[i].Kind.Formattable() {
			out = append(out, i)
		}
	}
	return out
}

// SetBlockKind converts every touched formattable block to kind
func (d *Document) SetBlockKind(r Range, kind BlockKind) bool {
	changed := false
	for _, i := range d.touched(r) {
		if d.Blocks[i].Kind != kind {
			d.Blocks[i].Kind = kind
			changed = true
		}
	}
	return changed
}

// ToggleList turns the touched blocks into list items of kind, or back into
// paragraphs when they all already are.
func (d *Document) ToggleList(r Range, kind BlockKind) bool {
	idx := d.touched(r)
	if len(idx) == 0 {
		return false
	}
	all := true
	for _, i := range idx {
		if d.Blocks[i].Kind != kind {
			all = false
			break
		}
	}
	if all {
		return d.SetBlockKind(r, Paragraph)
	}
	return d.SetBlockKind(r, kind)
}
