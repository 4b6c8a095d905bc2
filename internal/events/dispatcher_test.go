package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventJobStatusChanged, func(ctx context.Context, event Event) error {
		received = append(received, event)
		return nil
	})
	dispatcher.Subscribe(EventJobCreated, func(ctx context.Context, event Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "e1", Type: EventJobStatusChanged, JobID: 10})
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, int64(10), received[0].JobID)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	secondRan := false
	dispatcher.Subscribe(EventJobReopened, func(ctx context.Context, event Event) error {
		return errors.New("delivery failed")
	})
	dispatcher.Subscribe(EventJobReopened, func(ctx context.Context, event Event) error {
		secondRan = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "e2", Type: EventJobReopened, JobID: 11})
	require.NoError(t, err)
	assert.True(t, secondRan)
}

func TestDispatcherNoSubscribersIsNoOp(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	err := dispatcher.Publish(context.Background(), Event{ID: "e3", Type: EventJobAssigned})
	require.NoError(t, err)
}
