package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/editor"
	"github.com/personal-blog-api/internal/render"
)

func (e *Editor) View() string {
	if e.quit {
		return ""
	}

	var b strings.Builder
	heading := "New Post"
	if e.originalSlug != "" {
		heading = "Edit Post"
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")

	if e.preview {
		b.WriteString(e.previewView())
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("ctrl+p/esc back to editing"))
		return b.String()
	}

	b.WriteString(e.row(fieldTitle, e.title.View()))
	b.WriteString(e.row(fieldSlug, e.slug.View()))
	b.WriteString(e.row(fieldSummary, e.summary.View()))
	b.WriteString(e.row(fieldTags, e.tags.View()))
	check := "[ ]"
	if e.featured {
		check = "[x]"
	}
	b.WriteString(e.row(fieldFeatured, check+" Feature this post"))

	box := contentBoxStyle
	if e.focus == fieldContent {
		box = focusedContentBoxStyle
	}
	doc := renderDocument(e.surface.Document(), e.surface.Selection(), e.focus == fieldContent, e.width-6)
	b.WriteString(e.label(fieldContent) + "\n")
	b.WriteString(box.Width(max(20, e.width-4)).Render(doc))
	b.WriteString("\n")

	if spec, ok := e.surface.Prompt(); ok {
		b.WriteString(e.promptView(spec))
		b.WriteString("\n")
	}

	b.WriteString(e.statusView())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(
		"tab next field · ctrl+s save · ctrl+p preview · ctrl+b/alt+i/ctrl+u marks · ctrl+k link · ctrl+e code · alt+m image · esc quit"))
	return b.String()
}

func (e *Editor) label(f field) string {
	if e.focus == f {
		return focusedLabelStyle.Render(fieldLabels[f])
	}
	return labelStyle.Render(fieldLabels[f])
}

func (e *Editor) row(f field, body string) string {
	line := lipgloss.JoinHorizontal(lipgloss.Top, e.label(f), body)
	for _, ve := range e.errs {
		if ve.Field == strings.ToLower(fieldLabels[f]) {
			line += "\n" + labelStyle.Render("") + errorStyle.Render(ve.Message)
		}
	}
	return line + "\n"
}

func (e *Editor) promptView(spec editor.PromptSpec) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(spec.Title) + "\n")
	b.WriteString(spec.ValueLabel + "\n")
	if spec.Multiline {
		b.WriteString(e.promptArea.View())
	} else {
		b.WriteString(e.promptValue.View())
	}
	if spec.ExtraLabel != "" {
		b.WriteString("\n" + spec.ExtraLabel + "\n")
		b.WriteString(e.promptExtra.View())
	}
	confirm := "enter"
	if spec.Multiline {
		confirm = "ctrl+s"
	}
	b.WriteString("\n" + hintStyle.Render(confirm+" insert · esc cancel"))
	return promptBoxStyle.Render(b.String())
}

func (e *Editor) statusView() string {
	for _, ve := range e.errs {
		if ve.Field == "content" {
			return errorStyle.Render(ve.Message)
		}
	}
	if e.saveErr != nil {
		return errorStyle.Render("Save failed: " + e.saveErr.Error())
	}

	stats := e.surface.Stats()
	line := statusStyle.Render(fmt.Sprintf("%d words · %d min read", stats.Words, stats.ReadTime))
	if e.status != "" {
		style := statusStyle
		if e.saved != nil && !e.saving {
			style = okStyle
		}
		line += "  " + style.Render(e.status)
	}
	return line
}

// previewView shows the post the way readers get it: the published
// markup reduced to text, one block per paragraph.
func (e *Editor) previewView() string {
	html := render.RenderDocument(e.surface.Document())
	var paras []string
	for _, line := range strings.Split(html, "\n") {
		if text := strings.Join(strings.Fields(content.StripTags(line)), " "); text != "" {
			paras = append(paras, text)
		}
	}
	width := max(20, e.width-4)
	body := lipgloss.NewStyle().Width(width).Render(strings.Join(paras, "\n\n"))
	return headingStyle.Render(e.title.Value()) + "\n" +
		quoteStyle.Render(e.summary.Value()) + "\n\n" + body
}
