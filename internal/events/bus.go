// Package events carries state changes from the control loop to observers
// (metrics, the link server, the simulator) without blocking the loop.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting. A nil *Bus
// drops everything, so components can run without one.
type Bus struct {
	dispatcher *event.Dispatcher
}

func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish delivers ev to its subscribers asynchronously.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	switch e := ev.(type) {
	case ModeChangedEvent:
		event.Publish(b.dispatcher, e)
	case CaseChangedEvent:
		event.Publish(b.dispatcher, e)
	case PositionChangedEvent:
		event.Publish(b.dispatcher, e)
	case FrameFlushedEvent:
		event.Publish(b.dispatcher, e)
	case LinkChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type of its argument and
// returns the unsubscribe function. Unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e ModeChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	if b == nil {
		return func() {}
	}
	switch h := handler.(type) {
	case func(ModeChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CaseChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PositionChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FrameFlushedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LinkChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
