package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/camrelay/pkg/channels/gochannel"
	"github.com/dukex/camrelay/pkg/eventbus"
	"github.com/dukex/camrelay/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	t.Parallel()

	bus := newBus(t)

	received := make(chan *events.RelayTriggered, 1)

	require.NoError(t, bus.Handle(events.RelayTriggeredEvent, func(_ context.Context, event any) error {
		triggered, ok := event.(*events.RelayTriggered)
		assert.True(t, ok)
		received <- triggered

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, bus.Subscribe(ctx))

	published := events.RelayTriggered{
		BaseEvent: events.BaseEvent{
			ID:           bus.GenerateID(),
			Type:         events.RelayTriggeredEvent,
			Timestamp:    time.Now().UTC(),
			InvocationID: "inv-1",
		},
		Item:       "CameraPersonDetected",
		ItemState:  "2026-10-19T09:15:30+00:00",
		StatusCode: 200,
	}

	require.NoError(t, bus.Publish(ctx, "inv-1", published))

	select {
	case event := <-received:
		assert.Equal(t, published.ID, event.ID)
		assert.Equal(t, "inv-1", event.InvocationID)
		assert.Equal(t, "CameraPersonDetected", event.Item)
		assert.Equal(t, 200, event.StatusCode)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypesAreAcked(t *testing.T) {
	t.Parallel()

	bus := newBus(t)

	received := make(chan *events.RelayFailed, 1)

	require.NoError(t, bus.Handle(events.RelayFailedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.RelayFailed)

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "inv-2", events.RelaySkipped{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.RelaySkippedEvent, InvocationID: "inv-2"},
		Reason:    "thread_state_mismatch",
	}))
	require.NoError(t, bus.Publish(ctx, "inv-3", events.RelayFailed{
		BaseEvent:  events.BaseEvent{ID: bus.GenerateID(), Type: events.RelayFailedEvent, InvocationID: "inv-3"},
		Item:       "CameraPersonDetected",
		Error:      "unexpected openHAB response status: 500",
		StatusCode: 500,
	}))

	select {
	case event := <-received:
		assert.Equal(t, "inv-3", event.InvocationID)
		assert.Equal(t, 500, event.StatusCode)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	t.Parallel()

	bus := newBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
