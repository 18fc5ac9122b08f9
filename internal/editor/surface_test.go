package editor

import (
	"strings"
	"testing"

	"github.com/personal-blog-api/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	values []string
}

func (r *recorder) onChange(v string) { r.values = append(r.values, v) }

func newSurface(t *testing.T, value string, opts ...SurfaceOption) (*Surface, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := NewSurface(value, rec.onChange, opts...)
	require.NoError(t, err)
	return s, rec
}

func TestSurface_IdempotentLoad(t *testing.T) {
	fragments := []string{
		`<p>hello</p>`,
		`<h1>T</h1><ul><li>a</li></ul><hr><p></p>`,
		`<p>not <b>canonical</b></p>`,
	}
	for _, f := range fragments {
		q := &Queue{}
		s, rec := newSurface(t, f, WithScheduler(q))

		assert.Equal(t, f, s.Value())
		assert.Equal(t, 0, q.Drain())
		assert.Empty(t, rec.values)
	}
}

func TestSurface_BoldFiresOnce(t *testing.T) {
	s, rec := newSurface(t, `<p>hello</p>`)
	s.Select(Span(Pos{0, 0}, Pos{0, 5}))

	require.NoError(t, s.Exec(CmdBold))

	require.Len(t, rec.values, 1)
	assert.Equal(t, `<p><strong>hello</strong></p>`, rec.values[0])
	assert.Equal(t, rec.values[0], s.Value())
}

func TestSurface_NoChangeNoCallback(t *testing.T) {
	s, rec := newSurface(t, `<p>hello</p>`)
	s.Select(Caret(Pos{0, 2}))

	require.NoError(t, s.Exec(CmdBold))
	require.NoError(t, s.Exec(CmdRemoveFormat))
	assert.Empty(t, rec.values)
}

func TestSurface_DeferredNotificationSeesFinalState(t *testing.T) {
	q := &Queue{}
	s, rec := newSurface(t, `<p>hello</p>`, WithScheduler(q))
	s.SelectAll()

	require.NoError(t, s.Exec(CmdItalic))
	assert.Empty(t, rec.values, "notification must wait for the next turn")
	assert.Equal(t, 1, q.Len())

	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, []string{`<p><em>hello</em></p>`}, rec.values)
}

func TestSurface_SetValueDoesNotEcho(t *testing.T) {
	s, rec := newSurface(t, `<p>a</p>`)

	require.NoError(t, s.SetValue(`<p>a</p>`))
	require.NoError(t, s.SetValue(`<p>other</p>`))

	assert.Empty(t, rec.values)
	assert.Equal(t, `<p>other</p>`, s.Value())

	s.Select(Caret(Pos{0, 5}))
	require.NoError(t, s.InsertText("!"))
	assert.Equal(t, []string{`<p>other!</p>`}, rec.values)
}

func TestSurface_Typing(t *testing.T) {
	s, rec := newSurface(t, `<p>hello</p>`)

	require.NoError(t, s.InsertText(" world"))
	require.NoError(t, s.SplitBlock())
	require.NoError(t, s.InsertText("next"))
	require.NoError(t, s.DeleteBackward())

	assert.Equal(t, `<p>hello world</p><p>nex</p>`, s.Value())
	assert.Len(t, rec.values, 4)
	assert.Equal(t, Caret(Pos{1, 3}), s.Selection())
}

func TestSurface_Stats(t *testing.T) {
	body := "<p>" + strings.Repeat("word ", 401) + "</p>"
	s, _ := newSurface(t, body)

	assert.Equal(t, Stats{Words: 401, ReadTime: 3}, s.Stats())
	assert.Equal(t, content.ReadTime(body), s.Stats().ReadTime)

	s.SelectAll()
	require.NoError(t, s.InsertText("short"))
	assert.Equal(t, Stats{Words: 1, ReadTime: 1}, s.Stats())
	assert.Equal(t, content.ReadTime(s.Value()), s.Stats().ReadTime)
}

func TestSurface_LinkPromptRestoresSelection(t *testing.T) {
	s, rec := newSurface(t, `<p>go site</p>`)
	sel := Span(Pos{0, 3}, Pos{0, 7})
	s.Select(sel)

	require.NoError(t, s.Insert(FlowLink))
	spec, open := s.Prompt()
	require.True(t, open)
	assert.Equal(t, FlowLink, spec.Flow)
	assert.Equal(t, PromptAwaitingInput, s.PromptState())

	// focus wanders into the dialog
	s.Select(Caret(Pos{0, 0}))

	require.NoError(t, s.ConfirmPrompt(" https://go.dev ", ""))
	assert.Equal(t, PromptIdle, s.PromptState())
	assert.Equal(t, []string{`<p>go <a href="https://go.dev">site</a></p>`}, rec.values)
	assert.Equal(t, sel, s.Selection())
}

func TestSurface_LinkAtCaretInsertsURL(t *testing.T) {
	s, _ := newSurface(t, `<p>see&nbsp;</p>`)

	_, err := s.OpenPrompt(FlowLink)
	require.NoError(t, err)
	require.NoError(t, s.ConfirmPrompt("https://go.dev", ""))
	assert.Equal(t, `<p>see <a href="https://go.dev">https://go.dev</a></p>`, s.Value())
}

func TestSurface_PromptCancelAndEmptyConfirm(t *testing.T) {
	s, rec := newSurface(t, `<p>hello</p>`)
	saved := Span(Pos{0, 1}, Pos{0, 3})
	s.Select(saved)

	require.NoError(t, s.Insert(FlowLink))
	s.Select(Caret(Pos{0, 5}))
	require.NoError(t, s.CancelPrompt())
	assert.Equal(t, saved, s.Selection())
	assert.Equal(t, PromptIdle, s.PromptState())

	for _, flow := range []Flow{FlowLink, FlowImage, FlowCodeBlock, FlowInlineCode} {
		s.Select(Caret(Pos{0, 5}))
		_, err := s.OpenPrompt(flow)
		require.NoError(t, err)
		require.NoError(t, s.ConfirmPrompt("", "extra"))
		assert.Equal(t, PromptIdle, s.PromptState(), flow.String())
	}

	assert.Empty(t, rec.values)
	assert.Equal(t, `<p>hello</p>`, s.Value())
}

func TestSurface_PromptStateErrors(t *testing.T) {
	s, _ := newSurface(t, `<p>a</p>`)

	assert.ErrorIs(t, s.ConfirmPrompt("x", ""), ErrNoPrompt)
	assert.ErrorIs(t, s.CancelPrompt(), ErrNoPrompt)

	_, err := s.OpenPrompt(FlowImage)
	require.NoError(t, err)
	_, err = s.OpenPrompt(FlowLink)
	assert.ErrorIs(t, err, ErrPromptOpen)
	assert.ErrorIs(t, s.Exec(CmdBold), ErrPromptOpen)
	assert.ErrorIs(t, s.InsertText("x"), ErrPromptOpen)
}

func TestSurface_Insertions(t *testing.T) {
	t.Run("code block", func(t *testing.T) {
		s, rec := newSurface(t, `<p>before</p>`)
		require.NoError(t, s.Insert(FlowCodeBlock))
		spec, _ := s.Prompt()
		assert.True(t, spec.Multiline)

		require.NoError(t, s.ConfirmPrompt("x := 1", " Go "))
		want := `<p>before</p><div class="code-block" data-language="go"><pre><code>x := 1</code></pre></div><p></p>`
		assert.Equal(t, []string{want}, rec.values)
		assert.Equal(t, Caret(Pos{2, 0}), s.Selection())
	})

	t.Run("image without alt", func(t *testing.T) {
		s, _ := newSurface(t, "")
		require.NoError(t, s.Insert(FlowImage))
		require.NoError(t, s.ConfirmPrompt("https://x.test/a.png", ""))
		assert.Equal(t, `<figure><img src="https://x.test/a.png" alt="Blog image"></figure><p></p>`, s.Value())
	})

	t.Run("image with caption", func(t *testing.T) {
		s, _ := newSurface(t, "")
		require.NoError(t, s.Insert(FlowImage))
		require.NoError(t, s.ConfirmPrompt("a.png", "A cat"))
		assert.Equal(t, `<figure><img src="a.png" alt="A cat"><figcaption>A cat</figcaption></figure><p></p>`, s.Value())
	})

	t.Run("divider needs no prompt", func(t *testing.T) {
		s, rec := newSurface(t, "")
		require.NoError(t, s.Insert(FlowDivider))
		assert.Equal(t, PromptIdle, s.PromptState())
		assert.Equal(t, []string{`<hr><p></p>`}, rec.values)
	})

	t.Run("inline code over selection", func(t *testing.T) {
		s, _ := newSurface(t, `<p>use fmt now</p>`)
		s.Select(Span(Pos{0, 4}, Pos{0, 7}))
		require.NoError(t, s.Insert(FlowInlineCode))
		assert.Equal(t, PromptIdle, s.PromptState())
		assert.Equal(t, `<p>use <code>fmt</code> now</p>`, s.Value())
	})

	t.Run("inline code at caret prompts", func(t *testing.T) {
		s, _ := newSurface(t, `<p>run&nbsp;</p>`)
		require.NoError(t, s.Insert(FlowInlineCode))
		require.NoError(t, s.ConfirmPrompt("go test", ""))
		assert.Equal(t, `<p>run <code>go test</code></p>`, s.Value())
	})
}

func TestSurface_Shortcuts(t *testing.T) {
	s, rec := newSurface(t, `<p>hello</p>`)
	s.SelectAll()

	handled, err := s.HandleShortcut(ShortcutBold)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, `<p><strong>hello</strong></p>`, s.Value())

	handled, _ = s.HandleShortcut(ShortcutLink)
	assert.True(t, handled)
	assert.Equal(t, PromptAwaitingInput, s.PromptState())

	handled, err = s.HandleShortcut(ShortcutItalic)
	require.NoError(t, err)
	assert.False(t, handled, "shortcuts are ignored while a prompt is open")
	assert.Len(t, rec.values, 1)

	require.NoError(t, s.CancelPrompt())
	handled, _ = s.HandleShortcut("ctrl+q")
	assert.False(t, handled)
}

func TestSurface_WhitespaceSurvivesReload(t *testing.T) {
	s, _ := newSurface(t, "<p>first line\nsecond line</p>")

	require.NoError(t, s.InsertText("  x "))
	value := s.Value()
	assert.Equal(t, `<p>first line second line &nbsp;x&nbsp;</p>`, value)

	doc, err := Parse(value)
	require.NoError(t, err)
	assert.Equal(t, "first line second line  x ", doc.Blocks[0].Text())
	assert.Equal(t, value, Serialize(doc))
}
