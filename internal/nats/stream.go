package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding outcome notifications.
	StreamName  = "eventwiz_outcomes"
	subjectRoot = "eventwiz"
	retention   = 7 * 24 * time.Hour
)

// Subject returns the subject of one notification kind in a session.
// Example: "eventwiz.a1b2.created"
func Subject(session, kind string) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, session, kind)
}

// SessionSubject matches every notification of a session.
// Example: "eventwiz.a1b2.>"
func SessionSubject(session string) string {
	return fmt.Sprintf("%s.%s.>", subjectRoot, session)
}

// SetupStream creates or updates the outcome stream.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{subjectRoot + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   retention,
	})
	if err != nil {
		return nil, fmt.Errorf("setup stream %s: %w", StreamName, err)
	}
	return stream, nil
}
