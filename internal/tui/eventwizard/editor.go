package eventwizard

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/logger"
)

// openEditor edits the description in the user's $EDITOR.
func (m *Model) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "eventwiz_description_*.md")
	if err != nil {
		return m.showToast(toastError, fmt.Sprintf("cannot open editor: %v", err))
	}
	if _, err := tmpfile.WriteString(formatValue(m.ctrl.Value(event.Description))); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return m.showToast(toastError, fmt.Sprintf("cannot open editor: %v", err))
	}
	_ = tmpfile.Close()
	path := tmpfile.Name()

	cmd, err := editor.Command("eventwiz", path)
	if err != nil {
		_ = os.Remove(path)
		return m.showToast(toastError, "no editor available, set $EDITOR")
	}

	logger.Debug("Opening editor for description: %s", cmd.Path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			return editorFailedMsg{err: err}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return editorFailedMsg{err: err}
		}
		return descriptionEditedMsg{content: string(data)}
	})
}
