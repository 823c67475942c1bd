package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_TypedSubscription(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []EventType

	d.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		got = append(got, event.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketClosed}))
	require.Equal(t, []EventType{EventTicketCreated}, got)
}

func TestDispatcher_CatchAllSeesEverything(t *testing.T) {
	d := NewInMemoryDispatcher()
	count := 0

	d.SubscribeAll(func(ctx context.Context, event Event) error {
		count++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketAssigned}))
	require.Equal(t, 2, count)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	reached := false

	d.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		return errors.New("delivery failed")
	})
	d.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.True(t, reached)
}
