package eventwizard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/tui/theme"
)

const labelWidth = 24

// View renders the wizard full screen.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if m.quitting {
		view.AltScreen = false
		view.MouseMode = 0
		view.Content = lipgloss.NewLayer("")
		return view
	}

	canvas := uv.NewScreenBuffer(m.width, m.height)
	m.Draw(canvas, canvas.Bounds())
	view.Content = lipgloss.NewLayer(canvas.Render())
	view.BackgroundColor = theme.HexToColor(theme.Current().BgBase)
	return view
}

// Draw renders header, step body, hints and toast into area.
func (m *Model) Draw(scr uv.Screen, area uv.Rectangle) {
	header := m.renderHeader()
	footer := m.renderFooter()
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)

	uv.NewStyledString(header).Draw(scr, uv.Rect(area.Min.X+1, area.Min.Y, area.Dx()-1, headerHeight))

	bodyHeight := area.Dy() - headerHeight - footerHeight - 1
	if bodyHeight > 0 {
		body := uv.Rect(area.Min.X+1, area.Min.Y+headerHeight+1, area.Dx()-2, bodyHeight)
		uv.NewStyledString(m.renderBody()).Draw(scr, body)
	}

	uv.NewStyledString(footer).Draw(scr, uv.Rect(area.Min.X+1, area.Max.Y-footerHeight, area.Dx()-1, footerHeight))

	if m.toast != nil {
		t := m.toast.render()
		w := lipgloss.Width(t)
		uv.NewStyledString(t).Draw(scr, uv.Rect(max(area.Max.X-w-1, area.Min.X), area.Min.Y, w, 1))
	}
}

func (m *Model) title() string {
	if m.wiz.EventID() != "" {
		return "Edit event"
	}
	return "New event"
}

func (m *Model) renderHeader() string {
	t := theme.Current()
	s := t.S()

	cur := m.ctrl.Current()
	reg := m.ctrl.Registry()
	values := m.ctrl.Values()

	parts := make([]string, 0, reg.Count())
	for i := 0; i < reg.Count(); i++ {
		step := reg.Step(i)
		label := fmt.Sprintf("%d %s", i+1, step.Title)
		switch {
		case i == cur:
			parts = append(parts, s.StepActive.Render("● "+label))
		case step.Skipped(values):
			parts = append(parts, s.StepSkipped.Render("○ "+label))
		case i < cur:
			parts = append(parts, s.StepDone.Render("✓ "+label))
		default:
			parts = append(parts, s.StepPending.Render("○ "+label))
		}
	}

	title := theme.ApplyGradient(m.title(), t.Primary, t.Secondary)
	progress := strings.Join(parts, s.HintSeparator.Render(" › "))
	return title + "\n" + progress
}

func (m *Model) renderBody() string {
	s := theme.Current().S()
	step := m.ctrl.Registry().Step(m.ctrl.Current())

	var lines []string
	lines = append(lines, s.HeaderTitle.Render(step.Title))
	if step.Description != "" {
		lines = append(lines, s.Description.Render(step.Description))
	}
	if banner := m.ctrl.FormError(); banner != "" {
		lines = append(lines, "", s.Banner.Render(banner))
	}
	lines = append(lines, "")

	lastBatch := ""
	row := 0
	for i, it := range m.items {
		if it.kind == itemBatchCell && it.batchID != lastBatch {
			row++
			lastBatch = it.batchID
			lines = append(lines, "", s.Label.Render(fmt.Sprintf("Batch %d", row)))
		}
		if it.kind == itemAddBatch {
			lines = append(lines, "")
		}
		lines = append(lines, m.renderItem(it, i == m.focus))
	}

	if m.ctrl.IsLast() {
		lines = append(lines, "", m.renderPaneTabs(), m.review.View())
	}
	if m.busy() {
		lines = append(lines, "", s.Description.Render("Saving…"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderItem(it item, focused bool) string {
	s := theme.Current().S()

	marker := "  "
	labelStyle := s.Label
	if focused {
		marker = "› "
		labelStyle = s.LabelFocused
	}
	indent := ""
	if it.kind == itemBatchCell {
		indent = "  "
	}

	var line string
	switch it.kind {
	case itemToggle:
		box := s.ToggleOff.Render("[ ]")
		if m.ctrl.Values().Bool(it.path) {
			box = s.ToggleOn.Render("[x]")
		}
		line = marker + box + " " + labelStyle.Render(it.label)
	case itemAddBatch:
		button := s.ButtonNormal.Render("+ " + it.label)
		if focused {
			button = s.ButtonFocused.Render("+ " + it.label)
		}
		line = marker + button
	case itemChoice:
		line = marker + labelStyle.Width(labelWidth).Render(it.label) + m.renderChoice(it, focused)
	default:
		line = marker + indent + labelStyle.Width(labelWidth-len(indent)).Render(it.label) + m.input(it).View()
	}

	if msg := m.ctrl.Error(m.errorPath(it)); msg != "" {
		line += "\n" + strings.Repeat(" ", len(marker)+len(indent)) + s.FieldError.Render("✗ "+msg)
	}
	return line
}

func (m *Model) renderChoice(it item, focused bool) string {
	s := theme.Current().S()
	cur := formatValue(m.ctrl.Value(it.path))
	if cur == "" {
		return s.Placeholder.Render("choose with ← →")
	}
	display := cur
	if it.path == event.OrganizerID {
		if name := m.wiz.OrganizerName(cur); name != "" {
			display = name
		}
	}
	if focused {
		return s.Value.Render("‹ " + display + " ›")
	}
	return s.Value.Render(display)
}

func (m *Model) renderPaneTabs() string {
	s := theme.Current().S()
	tabs := make([]string, 0, 3)
	for _, p := range panes(m.wiz) {
		if p == m.pane {
			tabs = append(tabs, s.PaneTabActive.Render(string(p)))
		} else {
			tabs = append(tabs, s.PaneTab.Render(string(p)))
		}
	}
	return strings.Join(tabs, "")
}

func (m *Model) renderFooter() string {
	pairs := []string{"tab", "next field", "ctrl+n", "next step", "esc", "back"}

	if it, ok := m.focused(); ok {
		switch it.kind {
		case itemToggle:
			pairs = append(pairs, "space", "toggle")
		case itemChoice:
			pairs = append(pairs, "←→", "choose")
		case itemBatchCell:
			pairs = append(pairs, "ctrl+d", "remove batch")
		case itemInput:
			if it.path == event.Description {
				pairs = append(pairs, "ctrl+e", "editor")
			}
		}
	}
	if m.ctrl.IsLast() {
		pairs = append(pairs, "ctrl+r", "pane", "ctrl+s", "save")
	}
	pairs = append(pairs, "ctrl+c", "quit")
	return renderHintBar(pairs...)
}

// renderHintBar renders key-description pairs:
// "tab next field • esc back".
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}
	s := theme.Current().S()

	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + s.HintSeparator.Render("•") + " ")
		}
		b.WriteString(s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1]))
	}
	return b.String()
}
