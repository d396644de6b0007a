// Package submit sends a completed wizard to the events service and maps the
// result back onto the wizard.
//
// Submit re-validates every non-skipped step, assembles and checks the
// payload, calls the create or update endpoint and translates failures into
// field errors, a form banner or a retryable RemoteError. The wizard's field
// values are never modified.
package submit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/eventwiz/internal/api"
	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/validate"
	"github.com/mark3labs/eventwiz/internal/wizard"
)

// Form is a wizard session that can be submitted.
type Form interface {
	Controller() *wizard.Controller
	Assemble() (*api.EventInput, error)
	// EventID is the id of the event being edited, or "" to create.
	EventID() string
	// FieldPath maps a server field name onto a wizard path.
	FieldPath(server string) string
}

// Endpoint persists events.
type Endpoint interface {
	CreateEvent(ctx context.Context, in *api.EventInput) (*api.Event, error)
	UpdateEvent(ctx context.Context, id string, in *api.EventInput) (*api.Event, error)
}

// Outcome is a successful submission.
type Outcome struct {
	Event   *api.Event
	Payload *api.EventInput
	Created bool
}

// Submitter submits one form.
type Submitter struct {
	form     Form
	endpoint Endpoint
	notifier Notifier
	now      func() time.Time
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithNotifier sends every outcome to n.
func WithNotifier(n Notifier) Option {
	return func(s *Submitter) {
		s.notifier = n
	}
}

// New creates a submitter for form.
func New(form Form, endpoint Endpoint, opts ...Option) *Submitter {
	s := &Submitter{
		form:     form,
		endpoint: endpoint,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one submission. A second call while one is in flight returns
// ErrBusy without touching the endpoint, and a call from any step but the
// last returns ErrNotLastStep. Other failures are *ValidationFailure or
// *RemoteError.
func (s *Submitter) Submit(ctx context.Context) (*Outcome, error) {
	if !s.form.Controller().BeginSubmit() {
		logger.Debug("Submit rejected: already submitting")
		return nil, ErrBusy
	}
	return s.SubmitClaimed(ctx)
}

// SubmitClaimed runs a submission for a caller that already holds the guard
// from Controller.BeginSubmit. The guard is released on return.
func (s *Submitter) SubmitClaimed(ctx context.Context) (*Outcome, error) {
	ctrl := s.form.Controller()
	defer ctrl.EndSubmit()

	if !ctrl.IsLast() {
		logger.Debug("Submit rejected: on step %d", ctrl.Current())
		return nil, ErrNotLastStep
	}

	ctrl.SetFormError("")

	if first, errs := ctrl.ValidateAll(); first >= 0 {
		ctrl.GoTo(first)
		logger.Info("Submit blocked on step %d: %d field error(s)", first, len(errs))
		vf := &ValidationFailure{Step: first, Fields: errs}
		s.notify(ctx, Notification{Kind: KindBlocked, Step: first, Fields: errs, Message: "fix the highlighted fields"})
		return nil, vf
	}

	payload, err := s.form.Assemble()
	if err != nil {
		return nil, s.remoteFailure(ctx, "the event could not be prepared for submission", err)
	}
	if errs := validate.StructErrors(validate.Engine().Struct(payload)); len(errs) > 0 {
		logger.Warn("Assembled payload failed struct validation: %v", errs)
		return nil, s.rejected(ctx, "", errs, false)
	}

	var (
		ev      *api.Event
		created = s.form.EventID() == ""
	)
	if created {
		ev, err = s.endpoint.CreateEvent(ctx, payload)
	} else {
		ev, err = s.endpoint.UpdateEvent(ctx, s.form.EventID(), payload)
	}
	if err != nil {
		var rej *api.FieldRejection
		if errors.As(err, &rej) {
			fields := make(map[string]string, len(rej.Fields))
			for _, f := range rej.Fields {
				fields[f.Field] = f.Message
			}
			return nil, s.rejected(ctx, rej.Message, fields, true)
		}
		msg := GenericRemoteMessage
		var se *api.StatusError
		if errors.As(err, &se) && se.Message != "" {
			msg = se.Message
		}
		return nil, s.remoteFailure(ctx, msg, err)
	}

	kind := KindUpdated
	if created {
		kind = KindCreated
	}
	logger.Info("Event %s %s", ev.ID, kind)
	s.notify(ctx, Notification{
		Kind:      kind,
		EventID:   ev.ID,
		EventName: payload.Name,
		Message:   fmt.Sprintf("event %q %s", payload.Name, kind),
	})
	return &Outcome{Event: ev, Payload: payload, Created: created}, nil
}

// rejected records field errors keyed by server names on the wizard. Names
// that do not map onto a declared field join the form banner.
func (s *Submitter) rejected(ctx context.Context, message string, byServerName map[string]string, server bool) error {
	ctrl := s.form.Controller()
	reg := ctrl.Registry()

	fields := make(map[string]string)
	var unmapped []string
	first := -1
	for name, msg := range byServerName {
		path := s.form.FieldPath(name)
		step := reg.StepOf(path)
		if name == "" || step < 0 {
			if name != "" {
				msg = name + ": " + msg
			}
			unmapped = append(unmapped, msg)
			continue
		}
		fields[path] = msg
		if first < 0 || step < first {
			first = step
		}
	}
	sort.Strings(unmapped)

	banner := strings.Join(unmapped, "; ")
	if banner == "" && len(fields) == 0 {
		banner = message
		if banner == "" {
			banner = GenericRejectionMessage
		}
	}

	ctrl.SetErrors(fields)
	ctrl.SetFormError(banner)
	if first >= 0 {
		ctrl.GoTo(first)
	}
	logger.Info("Submission rejected: %d field error(s), banner=%q", len(fields), banner)

	vf := &ValidationFailure{Step: first, Fields: fields, Form: banner, Server: server}
	s.notify(ctx, Notification{Kind: KindRejected, Step: first, Fields: fields, Message: firstNonEmpty(banner, message, "the event was rejected")})
	return vf
}

func (s *Submitter) remoteFailure(ctx context.Context, message string, err error) error {
	logger.Error("Submission failed: %v", err)
	s.form.Controller().SetFormError(message)
	s.notify(ctx, Notification{Kind: KindFailed, Message: message, Step: s.form.Controller().Current()})
	return &RemoteError{Message: message, Err: err}
}

func (s *Submitter) notify(ctx context.Context, n Notification) {
	if s.notifier == nil {
		return
	}
	n.At = s.now()
	if err := s.notifier.Notify(ctx, n); err != nil {
		logger.Warn("Failed to publish %s notification: %v", n.Kind, err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
