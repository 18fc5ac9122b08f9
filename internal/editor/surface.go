package editor

// Surface is an editable document bound to a host-held value. User
// mutations serialize the document and report it through onChange once
// per mutation, via the Scheduler. Values pushed with SetValue are never
// echoed back. A Surface is not safe for concurrent use.
type Surface struct {
	doc      *Document
	sel      Range
	value    string
	stats    Stats
	onChange func(string)
	sched    Scheduler
	prompt   *prompt
}

// SurfaceOption configures a Surface
type SurfaceOption func(*Surface)

// WithScheduler sets how change notifications are deferred
func WithScheduler(s Scheduler) SurfaceOption {
	return func(sf *Surface) { sf.sched = s }
}

// NewSurface loads value into a new surface with the caret at the end
func NewSurface(value string, onChange func(string), opts ...SurfaceOption) (*Surface, error) {
	doc, err := Parse(value)
	if err != nil {
		return nil, err
	}
	if onChange == nil {
		onChange = func(string) {}
	}
	s := &Surface{
		doc:      doc,
		value:    value,
		stats:    StatsFor(value),
		onChange: onChange,
		sched:    Immediate(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sel = Caret(doc.End())
	return s, nil
}

// Value returns the fragment the host should hold
func (s *Surface) Value() string { return s.value }

// Document returns a copy of the current document
func (s *Surface) Document() *Document { return s.doc.Clone() }

// Stats returns word count and read time for the current value
func (s *Surface) Stats() Stats { return s.stats }

// Selection returns the current selection
func (s *Surface) Selection() Range { return s.sel }

// Select replaces the selection, clamped to the document
func (s *Surface) Select(r Range) { s.sel = s.doc.ClampRange(r) }

// SelectAll selects the whole document
func (s *Surface) SelectAll() { s.sel = s.doc.SelectAll() }

// Move moves the caret by delta characters; with extend the anchor stays
func (s *Surface) Move(delta int, extend bool) {
	s.moveTo(s.doc.Move(s.sel.Focus, delta), extend)
}

// MoveBlock moves the caret by delta blocks; with extend the anchor stays
func (s *Surface) MoveBlock(delta int, extend bool) {
	s.moveTo(s.doc.MoveBlock(s.sel.Focus, delta), extend)
}

func (s *Surface) moveTo(p Pos, extend bool) {
	if extend {
		s.sel.Focus = p
		return
	}
	s.sel = Caret(p)
}

// SetValue replaces the document with an externally supplied value. It is
// a no-op for the current value and never calls onChange. An open prompt
// is discarded.
func (s *Surface) SetValue(value string) error {
	if value == s.value {
		return nil
	}
	doc, err := Parse(value)
	if err != nil {
		return err
	}
	s.doc = doc
	s.value = value
	s.stats = StatsFor(value)
	s.sel = s.doc.ClampRange(s.sel)
	s.prompt = nil
	return nil
}

// Exec applies a toolbar command to the selection
func (s *Surface) Exec(cmd Command) error {
	if s.prompt != nil {
		return ErrPromptOpen
	}
	s.commit(s.doc.Apply(cmd, s.sel))
	return nil
}

// InsertText types text at the selection
func (s *Surface) InsertText(text string) error {
	return s.edit(func(r Range) (Pos, bool) { return s.doc.InsertText(r, text) })
}

// DeleteBackward is the Backspace key
func (s *Surface) DeleteBackward() error {
	return s.edit(s.doc.DeleteBackward)
}

// DeleteForward is the Delete key
func (s *Surface) DeleteForward() error {
	return s.edit(s.doc.DeleteForward)
}

// SplitBlock is the Enter key
func (s *Surface) SplitBlock() error {
	return s.edit(s.doc.SplitBlock)
}

func (s *Surface) edit(fn func(Range) (Pos, bool)) error {
	if s.prompt != nil {
		return ErrPromptOpen
	}
	pos, changed := fn(s.sel)
	s.sel = Caret(s.doc.Clamp(pos))
	s.commit(changed)
	return nil
}

// Insert starts an insertion flow. Dividers insert at once, as does
// inline code over a non-empty selection; the other flows open a prompt.
func (s *Surface) Insert(flow Flow) error {
	if s.prompt != nil {
		return ErrPromptOpen
	}
	switch {
	case flow == FlowDivider:
		return s.edit(func(r Range) (Pos, bool) { return s.doc.insertion(FlowDivider, r, "", "") })
	case flow == FlowInlineCode && !s.sel.Collapsed():
		s.commit(s.doc.setMark(s.sel, Code, true))
		return nil
	}
	_, err := s.OpenPrompt(flow)
	return err
}

// OpenPrompt moves to AWAITING_INPUT for flow, capturing the selection
func (s *Surface) OpenPrompt(flow Flow) (PromptSpec, error) {
	if s.prompt != nil {
		return PromptSpec{}, ErrPromptOpen
	}
	spec, ok := promptSpecs[flow]
	if !ok {
		spec = PromptSpec{Flow: flow, Title: "Insert"}
	}
	s.prompt = &prompt{spec: spec, saved: s.sel}
	return spec, nil
}

// Prompt returns the open prompt, if any
func (s *Surface) Prompt() (PromptSpec, bool) {
	if s.prompt == nil {
		return PromptSpec{}, false
	}
	return s.prompt.spec, true
}

// PromptState reports whether a prompt is open
func (s *Surface) PromptState() PromptState {
	if s.prompt == nil {
		return PromptIdle
	}
	return PromptAwaitingInput
}

// ConfirmPrompt restores the captured selection and performs the insertion.
// An empty required value closes the prompt without changing anything.
func (s *Surface) ConfirmPrompt(value, extra string) error {
	if s.prompt == nil {
		return ErrNoPrompt
	}
	p := s.prompt
	s.prompt = nil
	s.sel = s.doc.ClampRange(p.saved)

	pos, changed := s.doc.insertion(p.spec.Flow, s.sel, value, extra)
	if changed && (p.spec.Flow != FlowLink || s.sel.Collapsed()) {
		s.sel = Caret(s.doc.Clamp(pos))
	}
	s.commit(changed)
	return nil
}

// CancelPrompt closes the prompt and restores the captured selection
func (s *Surface) CancelPrompt() error {
	if s.prompt == nil {
		return ErrNoPrompt
	}
	s.sel = s.doc.ClampRange(s.prompt.saved)
	s.prompt = nil
	return nil
}

// commit records a user mutation and schedules its notification. The
// notification reads the value when it runs, so it reports the state after
// the mutation completed.
func (s *Surface) commit(changed bool) {
	if !changed {
		return
	}
	s.value = Serialize(s.doc)
	s.stats = StatsFor(s.value)
	s.sched.Schedule(func() { s.onChange(s.value) })
}
