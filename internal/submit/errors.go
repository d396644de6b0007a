package submit

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when Submit is called while a submission is in flight.
var ErrBusy = errors.New("a submission is already in progress")

// ErrNotLastStep is returned when Submit is called before the wizard reached
// its final step.
var ErrNotLastStep = errors.New("submit is only available on the last step")

// GenericRemoteMessage is shown when a failure carries no usable message.
const GenericRemoteMessage = "could not reach the events service, please try again"

// GenericRejectionMessage is the banner for a server rejection that names no
// known field and carries no message.
const GenericRejectionMessage = "the events service rejected the event"

// ValidationFailure reports invalid input, found either locally before the
// call or by the server. The wizard has already been moved to Step.
type ValidationFailure struct {
	// Step is the lowest step owning a failing field, or -1 when only the
	// whole form failed.
	Step int
	// Fields maps wizard paths to messages.
	Fields map[string]string
	// Form is the whole-form banner, if any.
	Form string
	// Server is true when the failure came from the events service.
	Server bool
}

func (e *ValidationFailure) Error() string {
	origin := "local"
	if e.Server {
		origin = "server"
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s validation failed: %s", origin, e.Form)
	}
	return fmt.Sprintf("%s validation failed on step %d: %d field error(s)", origin, e.Step, len(e.Fields))
}

// RemoteError reports a transport or service failure. Message is safe to
// show to the user.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("submission failed: %s: %v", e.Message, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
