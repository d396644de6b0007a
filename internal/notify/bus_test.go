package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/eventwiz/internal/nats"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBus(t *testing.T, session string) (*Bus, *nats.Embedded) {
	t.Helper()
	emb, err := nats.Start(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = emb.Close() })

	stream, err := nats.SetupStream(context.Background(), emb.JS)
	require.NoError(t, err)
	return NewBus(emb.JS, stream, session), emb
}

func TestSessionToken(t *testing.T) {
	assert.Equal(t, "retiro-de-carnaval-2025", SessionToken("Retiro de Carnaval 2025"))
	assert.Equal(t, "a-b", SessionToken("a.b"))
	assert.Equal(t, "default", SessionToken("..."))
}

func TestBus_PublishAndHistory(t *testing.T) {
	ctx := context.Background()
	bus, emb := startBus(t, "Session One")
	other := NewBus(emb.JS, bus.stream, "session two")

	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Notify(ctx, submit.Notification{Kind: submit.KindBlocked, Step: 0, Fields: map[string]string{"name": "this field is required"}, At: at}))
	require.NoError(t, other.Notify(ctx, submit.Notification{Kind: submit.KindFailed, Message: "elsewhere", At: at}))
	require.NoError(t, bus.Notify(ctx, submit.Notification{Kind: submit.KindCreated, EventID: "evt-1", Message: "created", At: at}))

	history, err := bus.History(ctx)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, submit.KindBlocked, history[0].Kind)
	assert.Equal(t, "this field is required", history[0].Fields["name"])
	assert.Equal(t, submit.KindCreated, history[1].Kind)
	assert.Equal(t, "evt-1", history[1].EventID)
	assert.True(t, history[1].At.Equal(at))
}

func TestBus_EmptyHistory(t *testing.T) {
	bus, _ := startBus(t, "quiet")

	history, err := bus.History(context.Background())

	require.NoError(t, err)
	assert.Empty(t, history)
}

// fetchFailing is a consumer whose fetches fail with err.
type fetchFailing struct {
	jetstream.Consumer
	err error
}

func (c fetchFailing) FetchNoWait(int) (jetstream.MessageBatch, error) {
	return nil, c.err
}

func TestDrainHistory_FetchErrors(t *testing.T) {
	t.Run("no messages is an empty history", func(t *testing.T) {
		history, err := drainHistory(fetchFailing{err: jetstream.ErrNoMessages})

		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("other failures are returned", func(t *testing.T) {
		closed := errors.New("connection closed")

		history, err := drainHistory(fetchFailing{err: closed})

		require.ErrorIs(t, err, closed)
		assert.Contains(t, err.Error(), "fetch history")
		assert.Nil(t, history)
	})
}

func TestFanout(t *testing.T) {
	var got []submit.Kind
	record := submit.NotifierFunc(func(_ context.Context, n submit.Notification) error {
		got = append(got, n.Kind)
		return nil
	})
	boom := errors.New("boom")
	failing := submit.NotifierFunc(func(context.Context, submit.Notification) error { return boom })

	err := Fanout{failing, nil, record}.Notify(context.Background(), submit.Notification{Kind: submit.KindUpdated})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []submit.Kind{submit.KindUpdated}, got)
}
