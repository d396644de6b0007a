package eventwizard

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/eventwiz/internal/tui/theme"
)

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

const toastDuration = 4 * time.Second

type toast struct {
	id   int
	kind toastKind
	text string
}

// showToast replaces the visible toast and schedules its expiry.
func (m *Model) showToast(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = &toast{id: id, kind: kind, text: text}
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (t *toast) render() string {
	s := theme.Current().S()
	switch t.kind {
	case toastSuccess:
		return s.ToastSuccess.Render("✓ " + t.text)
	case toastError:
		return s.ToastError.Render("✗ " + t.text)
	default:
		return s.ToastInfo.Render(t.text)
	}
}
