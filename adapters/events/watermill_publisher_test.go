package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishLogout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, TopicLogout)
	require.NoError(t, err)

	p := NewWatermillPublisher(pubSub)
	require.NoError(t, p.PublishLogout(ctx, "0xabc", "s1"))

	select {
	case msg := <-messages:
		var ev AuthEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, "0xabc", ev.Address)
		assert.Equal(t, "s1", ev.SessionID)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("logout event not delivered")
	}
}

func TestPublishVideoUploaded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, TopicVideoUploaded)
	require.NoError(t, err)

	require.NoError(t, NewWatermillPublisher(pubSub).PublishVideoUploaded(ctx, "vid_1", 42))

	select {
	case msg := <-messages:
		var ev VideoUploadedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, "vid_1", ev.VideoID)
		assert.Equal(t, int64(42), ev.Size)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("upload event not delivered")
	}
}
