package submit

import (
	"context"
	"time"
)

// Kind classifies a submission outcome.
type Kind string

const (
	KindCreated  Kind = "created"
	KindUpdated  Kind = "updated"
	KindRejected Kind = "rejected"
	KindFailed   Kind = "failed"
	KindBlocked  Kind = "blocked"
)

// Notification is the structured outcome handed to presentation adapters
// (toasts, banners, the notification bus).
type Notification struct {
	Kind      Kind              `json:"kind"`
	EventID   string            `json:"event_id,omitempty"`
	EventName string            `json:"event_name,omitempty"`
	Message   string            `json:"message"`
	Step      int               `json:"step"`
	Fields    map[string]string `json:"fields,omitempty"`
	At        time.Time         `json:"at"`
}

// Success reports whether the outcome persisted the event.
func (n Notification) Success() bool {
	return n.Kind == KindCreated || n.Kind == KindUpdated
}

// Notifier receives outcomes. Failures to notify are logged and never change
// the submission result.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
