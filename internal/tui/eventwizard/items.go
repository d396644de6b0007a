package eventwizard

import (
	"fmt"
	"strconv"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/eventwiz/internal/batch"
	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/tui/theme"
	"github.com/mark3labs/eventwiz/internal/validate"
)

type itemKind int

const (
	itemInput     itemKind = iota // free text, number or date
	itemChoice                    // one of a fixed set, cycled with ←/→
	itemToggle                    // boolean
	itemBatchCell                 // one field of one batch row
	itemAddBatch                  // the "add batch" button
)

// item is one focusable element of the current step.
type item struct {
	kind    itemKind
	path    string // field path, or the list name for batch items
	label   string
	rules   validate.Rules
	options []string

	batchID string
	field   string
}

// key identifies the text input bound to the item.
func (it item) key() string {
	if it.kind == itemBatchCell {
		return "batch:" + it.batchID + ":" + it.field
	}
	return it.path
}

func (it item) hasInput() bool {
	return it.kind == itemInput || it.kind == itemBatchCell
}

// buildItems lists the focusable elements of the current step. Batch rows
// only appear while the batches step is not skipped.
func (m *Model) buildItems() []item {
	step := m.ctrl.Registry().Step(m.ctrl.Current())

	var items []item
	for _, f := range step.Fields {
		it := item{path: f.Path, label: f.Label, rules: f.Rules}
		switch {
		case f.Rules.Kind == validate.KindBool:
			it.kind = itemToggle
		case len(f.Rules.OneOf) > 0:
			it.kind = itemChoice
			it.options = f.Rules.OneOf
		default:
			it.kind = itemInput
		}
		items = append(items, it)
	}

	if step.Skipped(m.ctrl.Values()) {
		return items
	}
	for _, list := range step.Lists {
		if list != event.Batches {
			continue
		}
		for _, r := range m.wiz.Batches().All() {
			for _, field := range batch.Fields {
				items = append(items, item{
					kind:    itemBatchCell,
					path:    list,
					label:   event.BatchFieldLabels[field],
					rules:   batch.DefaultRules[field],
					batchID: r.LocalID,
					field:   field,
				})
			}
		}
		items = append(items, item{kind: itemAddBatch, path: list, label: "Add batch"})
	}
	return items
}

// errorPath is the path the controller records the item's error under.
func (m *Model) errorPath(it item) string {
	if it.kind != itemBatchCell {
		return it.path
	}
	editor := m.wiz.Batches()
	return editor.Path(editor.Index(it.batchID), it.field)
}

// rawValue is the value currently stored for the item.
func (m *Model) rawValue(it item) any {
	if it.kind != itemBatchCell {
		return m.ctrl.Value(it.path)
	}
	r, ok := m.wiz.Batches().Get(it.batchID)
	if !ok {
		return nil
	}
	v, _ := r.Value(it.field)
	return v
}

// input returns the text input bound to it, creating it from the stored
// value on first use.
func (m *Model) input(it item) *textinput.Model {
	if in, ok := m.inputs[it.key()]; ok {
		return in
	}

	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder(it.rules.Kind)
	in.SetStyles(inputStyles())
	in.SetWidth(m.inputWidth())
	if it.path == event.Description {
		in.CharLimit = event.MaxDescription
	}
	in.SetValue(formatValue(m.rawValue(it)))

	m.inputs[it.key()] = &in
	return &in
}

// store writes text typed into the item's input back to the wizard.
func (m *Model) store(it item, text string) {
	if it.kind == itemBatchCell {
		_ = m.wiz.Batches().Update(it.batchID, it.field, text)
		return
	}
	m.ctrl.Set(it.path, text)
}

// touch validates the item the way leaving a field does.
func (m *Model) touch(it item) {
	switch it.kind {
	case itemBatchCell:
		path := m.errorPath(it)
		if msg, bad := m.wiz.Batches().Validate()[path]; bad {
			m.ctrl.SetErrors(map[string]string{path: msg})
		} else {
			m.ctrl.ClearError(path)
		}
	case itemInput, itemChoice, itemToggle:
		m.ctrl.Touch(it.path)
	}
}

// setFieldText replaces a field's text as if it had been typed.
func (m *Model) setFieldText(path, text string) {
	m.ctrl.Set(path, text)
	if in, ok := m.inputs[path]; ok {
		in.SetValue(text)
	}
	m.ctrl.Touch(path)
}

func (m *Model) inputWidth() int {
	w := m.width - labelWidth - 8
	if w < 20 {
		w = 20
	}
	if w > 60 {
		w = 60
	}
	return w
}

func placeholder(kind validate.Kind) string {
	switch kind {
	case validate.KindDate:
		return "YYYY-MM-DD or YYYY-MM-DD HH:MM"
	case validate.KindInt:
		return "0"
	case validate.KindDecimal:
		return "0.00"
	}
	return ""
}

func inputStyles() textinput.Styles {
	t := theme.Current()
	return textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBright)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Tertiary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgSurface2)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	}
}

// formatValue renders a stored value as editable text.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04")
	case *time.Time:
		if v == nil {
			return ""
		}
		return formatValue(*v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
