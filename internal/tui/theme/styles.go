package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style
	HeaderStep  lipgloss.Style
	StepDone    lipgloss.Style
	StepActive  lipgloss.Style
	StepPending lipgloss.Style
	StepSkipped lipgloss.Style

	Description lipgloss.Style

	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	Value        lipgloss.Style
	Placeholder  lipgloss.Style
	FieldError   lipgloss.Style

	InputBox        lipgloss.Style
	InputBoxFocused lipgloss.Style
	InputBoxError   lipgloss.Style

	ToggleOn  lipgloss.Style
	ToggleOff lipgloss.Style

	ButtonNormal  lipgloss.Style
	ButtonFocused lipgloss.Style

	// Banner shows the whole-form error.
	Banner lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastInfo    lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	PaneTab       lipgloss.Style
	PaneTabActive lipgloss.Style

	DiffInsert lipgloss.Style
	DiffDelete lipgloss.Style
	DiffEqual  lipgloss.Style
	DiffHunk   lipgloss.Style
}
