// Package tui hosts the post editor in a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/editor"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/validation"
)

// SaveFunc persists the form. originalSlug is empty for a new post.
type SaveFunc func(ctx context.Context, originalSlug string, input *models.PostInput) (*models.Post, error)

type field int

const (
	fieldTitle field = iota
	fieldSlug
	fieldSummary
	fieldTags
	fieldFeatured
	fieldContent
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Slug", "Summary", "Tags", "Featured", "Content"}

// hostKeys translates what a terminal can report into the surface's
// shortcut names. Terminals send ctrl+i as tab and cannot report ctrl+`
// or ctrl+enter at all.
var hostKeys = map[string]string{
	"ctrl+b":    editor.ShortcutBold,
	"alt+i":     editor.ShortcutItalic,
	"ctrl+u":    editor.ShortcutUnderline,
	"ctrl+k":    editor.ShortcutLink,
	"ctrl+e":    editor.ShortcutInlineCode,
	"ctrl+@":    editor.ShortcutCodeBlock,
	"alt+enter": editor.ShortcutDivider,
}

var toolbarKeys = map[string]editor.Command{
	"alt+1": editor.CmdHeading1,
	"alt+2": editor.CmdHeading2,
	"alt+3": editor.CmdHeading3,
	"alt+0": editor.CmdParagraph,
	"alt+l": editor.CmdBulletList,
	"alt+o": editor.CmdNumberedList,
	"alt+q": editor.CmdBlockquote,
	"alt+s": editor.CmdStrikethrough,
	"alt+x": editor.CmdRemoveFormat,
}

// flushMsg asks the model to deliver queued change notifications
type flushMsg struct{}

type savedMsg struct {
	post *models.Post
	err  error
}

// Editor is the bubbletea model for writing or editing one post
type Editor struct {
	save         SaveFunc
	originalSlug string
	slugTouched  bool

	title   textinput.Model
	slug    textinput.Model
	summary textarea.Model
	tags    textinput.Model

	featured bool
	content  string

	surface *editor.Surface
	queue   *editor.Queue

	promptValue textinput.Model
	promptArea  textarea.Model
	promptExtra textinput.Model
	promptOnExt bool

	focus   field
	preview bool
	width   int

	saving  bool
	status  string
	errs    []validation.ValidationError
	saveErr error
	saved   *models.Post
	quit    bool
}

// NewEditor builds an editor for post, or for a new post when post is nil
func NewEditor(post *models.Post, save SaveFunc) (*Editor, error) {
	e := &Editor{save: save, queue: &editor.Queue{}, width: 80}

	e.title = newInput("My first post", models.MaxTitleLength)
	e.slug = newInput("my-first-post", 0)
	e.tags = newInput("go, web", 0)
	e.summary = textarea.New()
	e.summary.Placeholder = "A short description shown on cards"
	e.summary.ShowLineNumbers = false
	e.summary.CharLimit = models.MaxSummaryLength
	e.summary.SetHeight(3)

	e.promptValue = newInput("", 0)
	e.promptExtra = newInput("", 0)
	e.promptArea = textarea.New()
	e.promptArea.ShowLineNumbers = false
	e.promptArea.SetHeight(6)

	if post != nil {
		e.originalSlug = post.Slug
		e.slugTouched = true
		e.title.SetValue(post.Title)
		e.slug.SetValue(post.Slug)
		e.summary.SetValue(post.Summary)
		e.tags.SetValue(strings.Join(post.Tags, ", "))
		e.featured = post.Featured
		e.content = post.Content
	}

	surface, err := editor.NewSurface(e.content, func(v string) { e.content = v }, editor.WithScheduler(e.queue))
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	e.surface = surface
	e.title.Focus()
	return e, nil
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// Saved returns the post stored by the last successful save
func (e *Editor) Saved() *models.Post { return e.saved }

// Content returns the fragment the form currently holds
func (e *Editor) Content() string { return e.content }

// Input assembles the form into a post input
func (e *Editor) Input() *models.PostInput {
	in := &models.PostInput{
		Title:    e.title.Value(),
		Slug:     e.slug.Value(),
		Summary:  e.summary.Value(),
		Content:  e.content,
		Tags:     strings.Split(e.tags.Value(), ","),
		Featured: e.featured,
		ReadTime: e.surface.Stats().ReadTime,
	}
	validation.NormalizePostInput(in)
	return in
}

func (e *Editor) Init() tea.Cmd {
	return textinput.Blink
}

func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.summary.SetWidth(max(20, msg.Width-14))
		e.promptArea.SetWidth(max(20, msg.Width-10))
		return e, nil
	case flushMsg:
		e.queue.Drain()
		return e, nil
	case savedMsg:
		e.saving = false
		if msg.err != nil {
			e.saveErr = msg.err
			e.status = ""
			return e, nil
		}
		e.saveErr = nil
		e.saved = msg.post
		e.originalSlug = msg.post.Slug
		e.status = "Saved " + msg.post.Slug
		return e, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			e.quit = true
			return e, tea.Quit
		}
		if e.surface.PromptState() == editor.PromptAwaitingInput {
			return e.updatePrompt(msg)
		}
		return e.updateKey(msg)
	}
	return e, nil
}

func (e *Editor) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if e.preview {
			e.preview = false
			return e, nil
		}
		e.quit = true
		return e, tea.Quit
	case "ctrl+s":
		return e, e.submit()
	case "ctrl+p":
		e.preview = !e.preview
		return e, nil
	case "tab":
		return e, e.setFocus((e.focus + 1) % fieldCount)
	case "shift+tab":
		return e, e.setFocus((e.focus + fieldCount - 1) % fieldCount)
	}
	if e.preview {
		return e, nil
	}

	var cmd tea.Cmd
	switch e.focus {
	case fieldTitle:
		before := e.title.Value()
		e.title, cmd = e.title.Update(msg)
		if e.title.Value() != before && e.originalSlug == "" && !e.slugTouched {
			e.slug.SetValue(content.GenerateSlug(e.title.Value()))
			e.slug.CursorEnd()
		}
	case fieldSlug:
		before := e.slug.Value()
		e.slug, cmd = e.slug.Update(msg)
		if e.slug.Value() != before {
			e.slugTouched = true
		}
	case fieldSummary:
		e.summary, cmd = e.summary.Update(msg)
	case fieldTags:
		e.tags, cmd = e.tags.Update(msg)
	case fieldFeatured:
		if msg.Type == tea.KeySpace || msg.Type == tea.KeyEnter {
			e.featured = !e.featured
		}
	case fieldContent:
		cmd = e.updateContent(msg)
	}
	return e, cmd
}

func (e *Editor) setFocus(f field) tea.Cmd {
	e.title.Blur()
	e.slug.Blur()
	e.summary.Blur()
	e.tags.Blur()
	e.focus = f
	switch f {
	case fieldTitle:
		return e.title.Focus()
	case fieldSlug:
		return e.slug.Focus()
	case fieldSummary:
		return e.summary.Focus()
	case fieldTags:
		return e.tags.Focus()
	}
	return nil
}

// updateContent forwards a key to the surface. Mutations queue their
// notification; the returned command delivers it on the next turn.
func (e *Editor) updateContent(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	s := e.surface

	var err error
	switch key {
	case "left":
		s.Move(-1, false)
	case "right":
		s.Move(1, false)
	case "shift+left":
		s.Move(-1, true)
	case "shift+right":
		s.Move(1, true)
	case "up":
		s.MoveBlock(-1, false)
	case "down":
		s.MoveBlock(1, false)
	case "shift+up":
		s.MoveBlock(-1, true)
	case "shift+down":
		s.MoveBlock(1, true)
	case "ctrl+a":
		s.SelectAll()
	case "enter":
		err = s.SplitBlock()
	case "backspace":
		err = s.DeleteBackward()
	case "delete":
		err = s.DeleteForward()
	case "alt+m":
		err = s.Insert(editor.FlowImage)
	default:
		if name, ok := hostKeys[key]; ok {
			_, err = s.HandleShortcut(name)
			break
		}
		if cmd, ok := toolbarKeys[key]; ok {
			err = s.Exec(cmd)
			break
		}
		switch {
		case msg.Type == tea.KeySpace:
			err = s.InsertText(" ")
		case msg.Type == tea.KeyRunes && !msg.Alt:
			err = s.InsertText(string(msg.Runes))
		}
	}
	if err != nil {
		e.status = err.Error()
	}
	return e.openPromptIfAny()
}

// openPromptIfAny resets the dialog inputs when the surface opened a prompt,
// then schedules delivery of any queued notification.
func (e *Editor) openPromptIfAny() tea.Cmd {
	var cmds []tea.Cmd
	if spec, ok := e.surface.Prompt(); ok {
		e.promptValue.Reset()
		e.promptArea.Reset()
		e.promptExtra.Reset()
		e.promptOnExt = false
		e.promptValue.Placeholder = spec.ValueLabel
		e.promptExtra.Placeholder = spec.ExtraLabel
		if spec.Multiline {
			cmds = append(cmds, e.promptArea.Focus())
		} else {
			cmds = append(cmds, e.promptValue.Focus())
		}
	}
	if e.queue.Len() > 0 {
		cmds = append(cmds, flush)
	}
	return tea.Batch(cmds...)
}

func flush() tea.Msg { return flushMsg{} }

func (e *Editor) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	spec, _ := e.surface.Prompt()
	switch msg.String() {
	case "esc":
		_ = e.surface.CancelPrompt()
		return e, nil
	case "tab", "shift+tab":
		if spec.ExtraLabel != "" {
			e.promptOnExt = !e.promptOnExt
			if e.promptOnExt {
				e.promptValue.Blur()
				e.promptArea.Blur()
				return e, e.promptExtra.Focus()
			}
			e.promptExtra.Blur()
			if spec.Multiline {
				return e, e.promptArea.Focus()
			}
			return e, e.promptValue.Focus()
		}
		return e, nil
	case "ctrl+s":
		return e, e.confirmPrompt(spec)
	case "enter":
		if !spec.Multiline || e.promptOnExt {
			return e, e.confirmPrompt(spec)
		}
	}

	var cmd tea.Cmd
	switch {
	case e.promptOnExt:
		e.promptExtra, cmd = e.promptExtra.Update(msg)
	case spec.Multiline:
		e.promptArea, cmd = e.promptArea.Update(msg)
	default:
		e.promptValue, cmd = e.promptValue.Update(msg)
	}
	return e, cmd
}

func (e *Editor) confirmPrompt(spec editor.PromptSpec) tea.Cmd {
	value := e.promptValue.Value()
	if spec.Multiline {
		value = e.promptArea.Value()
	}
	if err := e.surface.ConfirmPrompt(value, e.promptExtra.Value()); err != nil {
		e.status = err.Error()
	}
	return e.openPromptIfAny()
}

// submit validates the form locally and, when clean, saves it in the
// background. Pending notifications are drained first so the saved
// content is current.
func (e *Editor) submit() tea.Cmd {
	if e.saving {
		return nil
	}
	e.queue.Drain()
	in := e.Input()
	e.errs = validation.ValidatePostInput(in, true)
	if len(e.errs) > 0 {
		e.status = ""
		return nil
	}
	if e.save == nil {
		e.saveErr = fmt.Errorf("saving is not configured")
		return nil
	}
	e.saving = true
	e.status = "Saving..."
	save, slug := e.save, e.originalSlug
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		post, err := save(ctx, slug, in)
		return savedMsg{post: post, err: err}
	}
}

// Run shows the editor full screen until the user quits and returns the
// post saved last, if any.
func Run(e *Editor, opts ...tea.ProgramOption) (*models.Post, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(e, opts...).Run(); err != nil {
		return nil, err
	}
	return e.saved, nil
}
