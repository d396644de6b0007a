// Package eventwizard is the terminal front end of the event wizard. It only
// dispatches key presses to the wizard controller and renders its state;
// validation, navigation and submission rules live in the engine.
package eventwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/mark3labs/eventwiz/internal/wizard"
)

// ErrCancelled is returned by Run when the user leaves without saving.
var ErrCancelled = errors.New("wizard cancelled by user")

// Model is the BubbleTea model of one wizard session.
type Model struct {
	wiz       *event.Wizard
	ctrl      *wizard.Controller
	submitter *submit.Submitter
	ctx       context.Context

	items  []item
	focus  int
	inputs map[string]*textinput.Model

	pane   Pane
	review viewport.Model

	toast    *toast
	toastSeq int

	width  int
	height int

	pending   bool // a submission cmd is running
	outcome   *submit.Outcome
	cancelled bool
	quitting  bool
}

// Option configures a Model.
type Option func(*Model)

// WithPane selects the initial review pane.
func WithPane(p Pane) Option {
	return func(m *Model) {
		m.pane = p
	}
}

// WithContext sets the context submissions run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// New creates the model for wiz. Submissions go through submitter.
func New(wiz *event.Wizard, submitter *submit.Submitter, opts ...Option) *Model {
	vp := viewport.New(
		viewport.WithWidth(76),
		viewport.WithHeight(8),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := &Model{
		wiz:       wiz,
		ctrl:      wiz.Controller(),
		submitter: submitter,
		ctx:       context.Background(),
		inputs:    make(map[string]*textinput.Model),
		pane:      PaneSummary,
		review:    vp,
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(m)
	}

	valid := false
	for _, p := range panes(wiz) {
		valid = valid || p == m.pane
	}
	if !valid {
		m.pane = PaneSummary
	}

	m.rebuild(false)
	return m
}

// Run shows the wizard until the event is saved or the user quits. The
// outcome is available from m.Outcome afterwards.
func Run(ctx context.Context, m *Model) error {
	m.ctx = ctx
	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("event wizard failed: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return fmt.Errorf("unexpected model type %T", final)
	}
	if fm.cancelled {
		return ErrCancelled
	}
	return nil
}

// Outcome returns the saved event after a successful submission, or nil.
func (m *Model) Outcome() *submit.Outcome {
	return m.outcome
}

// Pane returns the review pane shown last.
func (m *Model) Pane() Pane {
	return m.pane
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case submitDoneMsg:
		return m, m.submitted(msg)

	case descriptionEditedMsg:
		m.setFieldText(event.Description, strings.TrimRight(msg.content, "\n"))
		return m, m.showToast(toastInfo, "description updated")

	case editorFailedMsg:
		logger.Warn("Editor failed: %v", msg.err)
		return m, m.showToast(toastError, "editor failed: "+msg.err.Error())

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseWheelMsg:
		if !m.ctrl.IsLast() {
			return m, nil
		}
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return m, cmd

	case tea.PasteMsg:
		if m.busy() {
			return m, nil
		}
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) busy() bool {
	return m.pending || m.ctrl.Submitting()
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancelled = true
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy() {
		return m, m.showToast(toastInfo, "a submission is in progress")
	}

	switch key {
	case "esc":
		if m.ctrl.Current() == 0 {
			m.cancelled = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.back()
	case "ctrl+p":
		return m, m.back()
	case "ctrl+n":
		return m, m.next()
	case "ctrl+s":
		return m, m.submit()
	case "tab", "down":
		return m, m.move(1)
	case "shift+tab", "up":
		return m, m.move(-1)
	case "ctrl+r":
		if m.ctrl.IsLast() {
			m.cyclePane()
		}
		return m, nil
	case "pgup", "pgdown":
		if m.ctrl.IsLast() {
			var cmd tea.Cmd
			m.review, cmd = m.review.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	it, ok := m.focused()
	if !ok {
		return m, nil
	}

	switch it.kind {
	case itemToggle:
		if key == "space" || key == " " || key == "enter" {
			m.toggle(it)
			return m, nil
		}
	case itemChoice:
		switch key {
		case "left":
			m.cycleChoice(it, -1)
			return m, nil
		case "right", "space", " ":
			m.cycleChoice(it, 1)
			return m, nil
		}
	case itemAddBatch:
		if key == "space" || key == " " || key == "enter" {
			return m, m.addBatch()
		}
	case itemBatchCell:
		if key == "ctrl+d" {
			m.removeBatch(it.batchID)
			return m, nil
		}
	case itemInput:
		if key == "ctrl+e" && it.path == event.Description {
			return m, m.openEditor()
		}
	}

	if key == "enter" {
		if m.focus == len(m.items)-1 && !m.ctrl.IsLast() {
			return m, m.next()
		}
		return m, m.move(1)
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) focused() (item, bool) {
	if m.focus < 0 || m.focus >= len(m.items) {
		return item{}, false
	}
	return m.items[m.focus], true
}

// updateFocusedInput forwards msg to the focused text input and stores the
// resulting text. A field already showing an error is re-validated live.
func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	it, ok := m.focused()
	if !ok || !it.hasInput() {
		return nil
	}
	in := m.input(it)
	before := in.Value()
	updated, cmd := in.Update(msg)
	*in = updated
	if in.Value() != before {
		m.store(it, in.Value())
		if m.ctrl.Error(m.errorPath(it)) != "" {
			m.touch(it)
		}
	}
	return cmd
}

// move shifts focus by delta, wrapping around, and validates the field left.
func (m *Model) move(delta int) tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	m.blur()
	m.focus = (m.focus + delta + len(m.items)) % len(m.items)
	return m.focusCurrent()
}

func (m *Model) blur() {
	it, ok := m.focused()
	if !ok {
		return
	}
	m.touch(it)
	if it.hasInput() {
		m.input(it).Blur()
	}
}

func (m *Model) focusCurrent() tea.Cmd {
	it, ok := m.focused()
	if !ok || !it.hasInput() {
		return nil
	}
	return m.input(it).Focus()
}

// rebuild recomputes the items of the current step. With toError set, focus
// lands on the first item carrying an error.
func (m *Model) rebuild(toError bool) {
	for _, in := range m.inputs {
		in.Blur()
	}
	m.items = m.buildItems()
	m.focus = 0
	if toError {
		errs := m.ctrl.Errors()
		for i, it := range m.items {
			if _, bad := errs[m.errorPath(it)]; bad {
				m.focus = i
				break
			}
		}
	}
	m.focusCurrent()
	if m.ctrl.IsLast() {
		m.refreshReview()
	}
}

func (m *Model) next() tea.Cmd {
	m.blur()
	res := m.ctrl.Advance()
	switch {
	case res.Last:
		m.focusCurrent()
		return m.showToast(toastInfo, "last step, press ctrl+s to save the event")
	case !res.Advanced:
		m.rebuild(true)
		return m.showToast(toastError, fmt.Sprintf("fix %d field(s) to continue", len(res.Errors)))
	}
	m.rebuild(false)
	return nil
}

func (m *Model) back() tea.Cmd {
	m.blur()
	if m.ctrl.Retreat() {
		m.rebuild(false)
	} else {
		m.focusCurrent()
	}
	return nil
}

func (m *Model) toggle(it item) {
	m.ctrl.Set(it.path, !m.ctrl.Values().Bool(it.path))
	m.ctrl.Touch(it.path)

	// Flipping isFree shows or hides the batch rows.
	focus := m.focus
	m.rebuild(false)
	if focus < len(m.items) {
		m.focus = focus
	}
}

func (m *Model) cycleChoice(it item, delta int) {
	if len(it.options) == 0 {
		return
	}
	cur := formatValue(m.ctrl.Value(it.path))
	idx := -1
	for i, o := range it.options {
		if o == cur {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta < 0:
		idx = len(it.options) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + delta + len(it.options)) % len(it.options)
	}
	m.ctrl.Set(it.path, it.options[idx])
	m.ctrl.Touch(it.path)
}

func (m *Model) addBatch() tea.Cmd {
	id := m.wiz.Batches().Add()
	m.ctrl.ClearError(event.Batches)
	m.rebuild(false)
	for i, it := range m.items {
		if it.kind == itemBatchCell && it.batchID == id {
			m.focus = i
			break
		}
	}
	return m.focusCurrent()
}

// removeBatch deletes a row. Row errors are keyed by index, so they are
// dropped for every row and recomputed on the next blur or Next.
func (m *Model) removeBatch(id string) {
	if err := m.wiz.Batches().Remove(id); err != nil {
		logger.Warn("Remove batch %s: %v", id, err)
		return
	}
	prefix := event.Batches + "."
	for path := range m.ctrl.Errors() {
		if strings.HasPrefix(path, prefix) {
			m.ctrl.ClearError(path)
		}
	}
	for key := range m.inputs {
		if strings.HasPrefix(key, "batch:"+id+":") {
			delete(m.inputs, key)
		}
	}
	focus := m.focus
	m.rebuild(false)
	if focus >= len(m.items) {
		focus = len(m.items) - 1
	}
	m.focus = max(focus, 0)
	m.focusCurrent()
}

func (m *Model) submit() tea.Cmd {
	if !m.ctrl.IsLast() {
		return m.showToast(toastInfo, "finish the remaining steps first")
	}
	m.blur()
	m.pending = true
	sub, ctx := m.submitter, m.ctx
	return func() tea.Msg {
		out, err := sub.Submit(ctx)
		return submitDoneMsg{outcome: out, err: err}
	}
}

func (m *Model) submitted(msg submitDoneMsg) tea.Cmd {
	m.pending = false
	if msg.err == nil {
		m.outcome = msg.outcome
		m.quitting = true
		return tea.Quit
	}

	var (
		vf *submit.ValidationFailure
		re *submit.RemoteError
	)
	switch {
	case errors.Is(msg.err, submit.ErrBusy):
		return m.showToast(toastInfo, "a submission is already in progress")
	case errors.As(msg.err, &vf):
		m.rebuild(true)
		switch {
		case len(vf.Fields) == 0:
			return m.showToast(toastError, vf.Form)
		case vf.Server:
			return m.showToast(toastError, fmt.Sprintf("the events service rejected %d field(s)", len(vf.Fields)))
		}
		return m.showToast(toastError, fmt.Sprintf("fix %d field(s) before saving", len(vf.Fields)))
	case errors.As(msg.err, &re):
		m.focusCurrent()
		return m.showToast(toastError, re.Message)
	}
	m.focusCurrent()
	return m.showToast(toastError, msg.err.Error())
}

func (m *Model) resize() {
	for _, in := range m.inputs {
		in.SetWidth(m.inputWidth())
	}
	m.review.SetWidth(max(m.width-4, 20))
	m.review.SetHeight(max(m.height-16, 5))
	if m.ctrl.IsLast() {
		m.refreshReview()
	}
}
