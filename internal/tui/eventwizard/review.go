package eventwizard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/glamour/v2"
	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"
	"github.com/mark3labs/eventwiz/internal/batch"
	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/tui/theme"
)

// Pane selects what the review panel on the last step shows.
type Pane string

const (
	PaneSummary Pane = "summary"
	PanePayload Pane = "payload"
	PaneDiff    Pane = "diff"
)

// panes returns the panes available for the wizard; the diff needs a loaded
// event to compare against.
func panes(w *event.Wizard) []Pane {
	if w.Original() == nil {
		return []Pane{PaneSummary, PanePayload}
	}
	return []Pane{PaneSummary, PanePayload, PaneDiff}
}

func (m *Model) cyclePane() {
	avail := panes(m.wiz)
	next := avail[0]
	for i, p := range avail {
		if p == m.pane {
			next = avail[(i+1)%len(avail)]
			break
		}
	}
	m.pane = next
	m.refreshReview()
}

func (m *Model) refreshReview() {
	var content string
	switch m.pane {
	case PanePayload:
		content = payloadPane(m.wiz)
	case PaneDiff:
		content = diffPane(m.wiz)
	default:
		content = renderMarkdown(summaryMarkdown(m.wiz), m.review.Width())
	}
	m.review.SetContent(content)
	m.review.GotoTop()
}

// summaryMarkdown describes the event as markdown for the summary pane.
func summaryMarkdown(w *event.Wizard) string {
	v := w.Controller().Values()
	text := func(path string) string {
		s := formatValue(v.Get(path))
		if s == "" {
			return "—"
		}
		return s
	}

	organizer := formatValue(v.Get(event.OrganizerID))
	if name := w.OrganizerName(organizer); name != "" {
		organizer = name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", text(event.Name))
	if d := formatValue(v.Get(event.Description)); d != "" {
		b.WriteString(d + "\n\n")
	}
	fmt.Fprintf(&b, "- **Type:** %s\n", text(event.Type))
	fmt.Fprintf(&b, "- **Organizer:** %s\n", organizer)
	fmt.Fprintf(&b, "- **Location:** %s\n", text(event.Location))
	fmt.Fprintf(&b, "- **When:** %s → %s\n", text(event.StartDatetime), text(event.EndDatetime))
	fmt.Fprintf(&b, "- **Registration:** %s → %s\n", text(event.RegistrationStartDate), text(event.RegistrationDeadline))
	fmt.Fprintf(&b, "- **Capacity:** %s\n", text(event.Capacity))
	if p := formatValue(v.Get(event.FinalDatePayment)); p != "" {
		fmt.Fprintf(&b, "- **Final payment:** %s\n", p)
	}
	fmt.Fprintf(&b, "- **Transport:** %s\n", yesNo(v.Bool(event.HasTransport)))
	fmt.Fprintf(&b, "- **Terms required:** %s\n", yesNo(v.Bool(event.TermIsRequired)))
	fmt.Fprintf(&b, "- **Published:** %s\n", yesNo(v.Bool(event.IsPublished)))

	if v.Bool(event.IsFree) {
		b.WriteString("\nFree event, no batches.\n")
		return b.String()
	}

	b.WriteString("\n## Batches\n\n")
	records := w.Batches().All()
	if len(records) == 0 {
		b.WriteString("No batches yet.\n")
		return b.String()
	}
	b.WriteString("| Name | Capacity | Price | Starts | Ends |\n|---|---|---|---|---|\n")
	for _, r := range records {
		cells := make([]string, 0, len(batch.Fields))
		for _, f := range batch.Fields {
			val, _ := r.Value(f)
			cells = append(cells, formatValue(val))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// renderMarkdown renders markdown content using glamour.
// Falls back to plain text if rendering fails.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}
	if width < 20 {
		width = 20
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}

// payloadJSON is the request body the wizard would submit now.
func payloadJSON(w *event.Wizard) (string, error) {
	payload, err := w.Assemble()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

func payloadPane(w *event.Wizard) string {
	src, err := payloadJSON(w)
	if err != nil {
		return theme.Current().S().FieldError.Render("Payload unavailable: " + err.Error())
	}
	return highlightJSON(src)
}

// payloadDiff is a unified diff between the loaded event and the payload the
// wizard would submit now. It is empty when nothing changed.
func payloadDiff(w *event.Wizard) (string, error) {
	if w.Original() == nil {
		return "", nil
	}
	before, err := json.MarshalIndent(w.Original(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal loaded event: %w", err)
	}
	after, err := payloadJSON(w)
	if err != nil {
		return "", err
	}
	return udiff.Unified("loaded", "edited", string(before)+"\n", after+"\n"), nil
}

func diffPane(w *event.Wizard) string {
	s := theme.Current().S()
	diff, err := payloadDiff(w)
	if err != nil {
		return s.FieldError.Render("Diff unavailable: " + err.Error())
	}
	if diff == "" {
		return s.Description.Render("No changes.")
	}

	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			lines[i] = s.DiffHunk.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = s.DiffInsert.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.DiffDelete.Render(line)
		default:
			lines[i] = s.DiffEqual.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// highlightJSON colors JSON source with chroma. The output uses true color
// ANSI codes; it falls back to the source on any failure.
func highlightJSON(source string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return source
	}

	baseStyle := styles.Get("catppuccin-mocha")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}
	// Token backgrounds would clash with the panel background.
	bg := chroma.MustParseColour(theme.Current().BgBase)
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bg
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(buf.String(), "\n")
}
