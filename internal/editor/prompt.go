package editor

import (
	"errors"
	"strings"
)

var (
	// ErrPromptOpen is returned when an action needs the prompt to be idle
	ErrPromptOpen = errors.New("editor: a prompt is already open")
	// ErrNoPrompt is returned when confirming or cancelling while idle
	ErrNoPrompt = errors.New("editor: no prompt is open")
)

// DefaultImageAlt is used for images inserted without alt text
const DefaultImageAlt = "Blog image"

// Flow is a selection-dependent insertion
type Flow int

const (
	FlowLink Flow = iota
	FlowImage
	FlowInlineCode
	FlowCodeBlock
	FlowDivider
)

func (f Flow) String() string {
	switch f {
	case FlowLink:
		return "link"
	case FlowImage:
		return "image"
	case FlowInlineCode:
		return "inline-code"
	case FlowCodeBlock:
		return "code-block"
	case FlowDivider:
		return "divider"
	}
	return "unknown"
}

// PromptSpec describes the dialog a host shows for an open prompt
type PromptSpec struct {
	Flow       Flow
	Title      string
	ValueLabel string
	ExtraLabel string // empty when the flow takes no extra field
	Multiline  bool
}

var promptSpecs = map[Flow]PromptSpec{
	FlowLink:       {Flow: FlowLink, Title: "Insert Link", ValueLabel: "URL"},
	FlowImage:      {Flow: FlowImage, Title: "Insert Image", ValueLabel: "Image URL", ExtraLabel: "Alt text"},
	FlowInlineCode: {Flow: FlowInlineCode, Title: "Insert Inline Code", ValueLabel: "Code"},
	FlowCodeBlock:  {Flow: FlowCodeBlock, Title: "Insert Code Block", ValueLabel: "Code", ExtraLabel: "Language", Multiline: true},
}

// PromptState is the state of the insertion prompt
type PromptState int

const (
	PromptIdle PromptState = iota
	PromptAwaitingInput
)

type prompt struct {
	spec  PromptSpec
	saved Range
}

// insertion applies a confirmed flow to the document at r. An empty
// required field inserts nothing.
func (d *Document) insertion(flow Flow, r Range, value, extra string) (Pos, bool) {
	switch flow {
	case FlowLink:
		url := strings.TrimSpace(value)
		if url == "" {
			return r.Focus, false
		}
		if r.Collapsed() {
			return d.InsertRuns(r, []Run{{Text: url, Href: url}})
		}
		return r.Focus, d.SetLink(r, url)
	case FlowImage:
		url := strings.TrimSpace(value)
		if url == "" {
			return r.Focus, false
		}
		caption := strings.TrimSpace(extra)
		alt := caption
		if alt == "" {
			alt = DefaultImageAlt
		}
		return d.InsertBlocks(r, Block{Kind: Image, Src: url, Alt: alt, Caption: caption})
	case FlowInlineCode:
		if value == "" {
			return r.Focus, false
		}
		return d.InsertRuns(r, []Run{{Text: value, Marks: Code}})
	case FlowCodeBlock:
		if value == "" {
			return r.Focus, false
		}
		lang := strings.ToLower(strings.TrimSpace(extra))
		return d.InsertBlocks(r, Block{Kind: CodeBlock, Language: lang, Runs: []Run{{Text: value}}})
	case FlowDivider:
		return d.InsertBlocks(r, Block{Kind: Divider})
	}
	return r.Focus, false
}
