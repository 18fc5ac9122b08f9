package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2563EB")).
			Padding(0, 1)

	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(10)
	focusedLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true).Width(10)

	contentBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	focusedContentBoxStyle = contentBoxStyle.BorderForeground(lipgloss.Color("#5B8DEF"))

	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#F7B801")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	quoteStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#AAAAAA"))
	codeBlockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E2E8F0")).
			Background(lipgloss.Color("#1E293B")).
			Padding(0, 1)
	codeLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#475569")).Background(lipgloss.Color("#E2E8F0")).Padding(0, 1)
	inlineCode     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F472B6"))
	linkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")).Underline(true)
	dividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	caretStyle     = lipgloss.NewStyle().Reverse(true)
)
