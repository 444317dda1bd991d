package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventReservationCreated, func(e *Event) error {
		received = append(received, e)
		return nil
	})

	bus.Publish(&Event{Type: EventReservationCreated, Payload: []byte(`{}`)})
	bus.Publish(&Event{Type: EventReservationCancelled, Payload: []byte(`{}`)})

	// only the subscribed type is delivered
	require.Len(t, received, 1)
	assert.Equal(t, EventReservationCreated, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventReservationCancelled, func(e *Event) error {
			calls++
			return nil
		})
	}

	bus.Publish(&Event{Type: EventReservationCancelled})
	assert.Equal(t, 3, calls)
}

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got ReservationEventPayload
	bus.Subscribe(EventReservationCreated, func(e *Event) error {
		return json.Unmarshal(e.Payload, &got)
	})

	payload := ReservationEventPayload{
		BookingID: "b-1",
		Night:     "2026-07-11",
		Room:      "Chambre bleue",
		Slot:      "lit 1",
		Name:      "Alice",
	}
	require.NoError(t, bus.PublishJSON(EventReservationCreated, payload))

	assert.Equal(t, payload.BookingID, got.BookingID)
	assert.Equal(t, payload.Night, got.Night)
}

func TestPublishJSONNilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventReservationCreated, nil))
}
