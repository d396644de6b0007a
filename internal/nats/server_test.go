package nats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "eventwiz.s1.created", Subject("s1", "created"))
	assert.Equal(t, "eventwiz.s1.>", SessionSubject("s1"))
}

func TestStartSetupAndClose(t *testing.T) {
	ctx := context.Background()
	emb, err := Start(filepath.Join(t.TempDir(), "nested", "nats"))
	require.NoError(t, err)

	stream, err := SetupStream(ctx, emb.JS)
	require.NoError(t, err)

	_, err = emb.JS.Publish(ctx, Subject("s1", "created"), []byte(`{}`))
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, StreamName, info.Config.Name)
	assert.Equal(t, uint64(1), info.State.Msgs)

	// Setting up twice is idempotent.
	_, err = SetupStream(ctx, emb.JS)
	require.NoError(t, err)

	require.NoError(t, emb.Close())
}

func TestCloseNil(t *testing.T) {
	var emb *Embedded
	assert.NoError(t, emb.Close())
}
