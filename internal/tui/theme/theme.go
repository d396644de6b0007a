// Package theme holds the color palette and pre-built lipgloss styles of the
// eventwiz terminal UI.
package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // hex, converted with lipgloss.Color at style build time
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgCrust    string
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string
	BgSurface2 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Diff colors
	DiffInsertBg string
	DiffDeleteBg string
	DiffEqualBg  string

	// Border colors
	BorderMuted   string
	BorderDefault string
	BorderFocused string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

var (
	currentMu sync.RWMutex
	current   = NewCatppuccinMocha()
)

// Current returns the active theme.
func Current() *Theme {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetCurrent replaces the active theme.
func SetCurrent(t *Theme) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = t
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		HeaderStep: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)),
		StepDone: lipgloss.NewStyle().
			Foreground(c(t.Success)),
		StepActive: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		StepPending: lipgloss.NewStyle().
			Foreground(c(t.BgOverlay)),
		StepSkipped: lipgloss.NewStyle().
			Foreground(c(t.BgSurface2)).
			Strikethrough(true),

		Description: lipgloss.NewStyle().
			Foreground(c(t.FgSubtle)).
			Italic(true),

		Label: lipgloss.NewStyle().
			Foreground(c(t.FgBase)),
		LabelFocused: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		Value: lipgloss.NewStyle().
			Foreground(c(t.FgBright)),
		Placeholder: lipgloss.NewStyle().
			Foreground(c(t.BgOverlay)),
		FieldError: lipgloss.NewStyle().
			Foreground(c(t.Error)),

		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.BorderDefault)).
			Padding(0, 1),
		InputBoxFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.BorderFocused)).
			Padding(0, 1),
		InputBoxError: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Error)).
			Padding(0, 1),

		ToggleOn: lipgloss.NewStyle().
			Foreground(c(t.Success)).
			Bold(true),
		ToggleOff: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)),

		ButtonNormal: lipgloss.NewStyle().
			Foreground(c(t.FgBase)).
			Background(c(t.BgSurface0)).
			Padding(0, 2),
		ButtonFocused: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Primary)).
			Bold(true).
			Padding(0, 2),

		Banner: lipgloss.NewStyle().
			Foreground(c(t.Error)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(c(t.Error)).
			PaddingLeft(1),

		ToastSuccess: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Success)).
			Padding(0, 1),
		ToastError: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Error)).
			Padding(0, 1),
		ToastInfo: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Info)).
			Padding(0, 1),

		HintKey: lipgloss.NewStyle().
			Foreground(c(t.FgSubtle)).
			Bold(true),
		HintDesc: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().
			Foreground(c(t.BgSurface2)),

		PaneTab: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)).
			Padding(0, 1),
		PaneTabActive: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Underline(true).
			Padding(0, 1),

		DiffInsert: lipgloss.NewStyle().
			Foreground(c(t.Success)).
			Background(c(t.DiffInsertBg)),
		DiffDelete: lipgloss.NewStyle().
			Foreground(c(t.Error)).
			Background(c(t.DiffDeleteBg)),
		DiffEqual: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)).
			Background(c(t.DiffEqualBg)),
		DiffHunk: lipgloss.NewStyle().
			Foreground(c(t.Info)),
	}
}
