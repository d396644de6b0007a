package eventwizard

import "github.com/mark3labs/eventwiz/internal/submit"

// submitDoneMsg carries the result of a submission run in a tea.Cmd.
type submitDoneMsg struct {
	outcome *submit.Outcome
	err     error
}

// descriptionEditedMsg is sent when $EDITOR returns with new description text.
type descriptionEditedMsg struct {
	content string
}

type editorFailedMsg struct {
	err error
}

type toastExpiredMsg struct {
	id int
}
