// Package notify publishes wizard outcomes to the embedded NATS stream and
// reads a session's outcome history back.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/nats"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/nats-io/nats.go/jetstream"
)

// historyBatch is how many messages History fetches per round trip.
const historyBatch = 256

// Bus publishes the outcomes of one wizard session.
type Bus struct {
	js      jetstream.JetStream
	stream  jetstream.Stream
	session string
}

// NewBus returns a bus for session. The session name is slugged so it is a
// single valid subject token.
func NewBus(js jetstream.JetStream, stream jetstream.Stream, session string) *Bus {
	return &Bus{js: js, stream: stream, session: SessionToken(session)}
}

// SessionToken turns a free-form session name into a subject token.
func SessionToken(session string) string {
	token := slug.Make(session)
	if token == "" {
		return "default"
	}
	return token
}

// Session returns the slugged session token.
func (b *Bus) Session() string {
	return b.session
}

// Notify publishes n on eventwiz.<session>.<kind>.
func (b *Bus) Notify(ctx context.Context, n submit.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	subject := nats.Subject(b.session, string(n.Kind))
	ack, err := b.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	logger.Debug("Published %s notification seq=%d", n.Kind, ack.Sequence)
	return nil
}

// History returns the session's notifications, oldest first.
func (b *Bus) History(ctx context.Context) ([]submit.Notification, error) {
	consumer, err := b.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SessionSubject(b.session),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("create history consumer: %w", err)
	}
	return drainHistory(consumer)
}

// drainHistory fetches every pending notification from consumer.
func drainHistory(consumer jetstream.Consumer) ([]submit.Notification, error) {
	var out []submit.Notification
	for {
		msgs, err := consumer.FetchNoWait(historyBatch)
		if errors.Is(err, jetstream.ErrNoMessages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch history: %w", err)
		}
		count := 0
		for msg := range msgs.Messages() {
			count++
			var n submit.Notification
			if err := json.Unmarshal(msg.Data(), &n); err != nil {
				logger.Warn("Skipping malformed notification on %s: %v", msg.Subject(), err)
			} else {
				out = append(out, n)
			}
			_ = msg.Ack()
		}
		if err := msgs.Error(); err != nil && !errors.Is(err, jetstream.ErrNoMessages) {
			return nil, fmt.Errorf("fetch history: %w", err)
		}
		if count < historyBatch {
			break
		}
	}
	return out, nil
}

// Fanout sends every notification to each notifier in order. The first
// error is returned after all notifiers ran.
type Fanout []submit.Notifier

func (f Fanout) Notify(ctx context.Context, n submit.Notification) error {
	var first error
	for _, notifier := range f {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
