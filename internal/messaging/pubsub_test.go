package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGoChannelPubSub(t *testing.T) {
	t.Run("delivers published events to group consumers", func(t *testing.T) {
		ps := messaging.NewGoChannelPubSub(zap.NewNop())
		group := messaging.NewConsumerGroup(ps.Subscriber, zap.NewNop())
		received := make(chan testEvent, 1)

		messaging.Subscribe(group, "test.topic", func(_ context.Context, event *testEvent) error {
			received <- *event

			return nil
		})
		require.NoError(t, group.Start(context.Background()))

		publish := messaging.NewPublishFunc[testEvent](ps.Publisher, "test.topic")
		require.NoError(t, publish(context.Background(), &testEvent{ID: "1", Name: "clicked"}))

		select {
		case event := <-received:
			assert.Equal(t, "clicked", event.Name)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for event")
		}

		require.NoError(t, group.Shutdown())
		require.NoError(t, messaging.NewPublisherGroup(ps.Publisher).Shutdown())
	})
}
