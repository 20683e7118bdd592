package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()

	var order []string
	d.Subscribe(EventChatTaken, func(_ context.Context, _ Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(EventChatTaken, func(_ context.Context, _ Event) error {
		order = append(order, "second")
		return nil
	})
	d.Subscribe(EventChatClosed, func(_ context.Context, _ Event) error {
		order = append(order, "wrong-type")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventChatTaken}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishContinuesPastFailingSubscriber(t *testing.T) {
	d := NewInMemoryDispatcher()

	var delivered bool
	d.Subscribe(EventChatEscalated, func(_ context.Context, _ Event) error {
		return errors.New("listener broke")
	})
	d.Subscribe(EventChatEscalated, func(_ context.Context, _ Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventChatEscalated}))
	assert.True(t, delivered)
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventMessageAdded}))
}
