package editor

// Shortcut names, in the key notation hosts report
const (
	ShortcutBold       = "ctrl+b"
	ShortcutItalic     = "ctrl+i"
	ShortcutUnderline  = "ctrl+u"
	ShortcutLink       = "ctrl+k"
	ShortcutInlineCode = "ctrl+e"
	ShortcutCodeBlock  = "ctrl+`"
	ShortcutDivider    = "ctrl+enter"
)

var shortcutCommands = map[string]Command{
	ShortcutBold:      CmdBold,
	ShortcutItalic:    CmdItalic,
	ShortcutUnderline: CmdUnderline,
}

var shortcutFlows = map[string]Flow{
	ShortcutLink:       FlowLink,
	ShortcutInlineCode: FlowInlineCode,
	ShortcutCodeBlock:  FlowCodeBlock,
	ShortcutDivider:    FlowDivider,
}

// HandleShortcut runs the action bound to key. It reports false for
// unbound keys and while a prompt is open, since the prompt owns input.
func (s *Surface) HandleShortcut(key string) (bool, error) {
	if s.prompt != nil {
		return false, nil
	}
	if cmd, ok := shortcutCommands[key]; ok {
		return true, s.Exec(cmd)
	}
	if flow, ok := shortcutFlows[key]; ok {
		return true, s.Insert(flow)
	}
	return false, nil
}
