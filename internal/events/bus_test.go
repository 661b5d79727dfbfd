package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan ModeChangedEvent, 1)

	unsub := bus.Subscribe(func(e ModeChangedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(ModeChangedEvent{From: "manual", To: "driven"})

	select {
	case got := <-received:
		assert.Equal(t, "driven", got.To)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusRoutesByType(t *testing.T) {
	bus := New()
	cases := make(chan CaseChangedEvent, 1)
	frames := make(chan FrameFlushedEvent, 1)

	defer bus.Subscribe(func(e CaseChangedEvent) { cases <- e })()
	defer bus.Subscribe(func(e FrameFlushedEvent) { frames <- e })()

	bus.Publish(FrameFlushedEvent{Source: "wave"})

	got := <-frames
	assert.Equal(t, "wave", got.Source)
	select {
	case <-cases:
		t.Fatal("case handler saw a frame event")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := New()
	received := make(chan LinkChangedEvent, 1)

	unsub := bus.Subscribe(func(e LinkChangedEvent) {
		received <- e
	})

	bus.Publish(LinkChangedEvent{Linked: true})
	<-received

	unsub()

	bus.Publish(LinkChangedEvent{Linked: false})
	select {
	case <-received:
		t.Fatal("should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestNilBus(t *testing.T) {
	var bus *Bus
	require.NotPanics(t, func() {
		bus.Publish(PositionChangedEvent{Position: 1})
		bus.Subscribe(func(PositionChangedEvent) {})()
	})
}

func TestUnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	assert.NotNil(t, unsub)
	unsub()
}
