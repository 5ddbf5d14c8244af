package event

import (
	"context"
	"log"
	"sync"
)

// Subscriber consumes published events.  Handle errors are logged by the
// bus and never propagated back to the publisher; delivery is
// at-least-once, so subscribers must tolerate duplicates.
type Subscriber interface {
	HandleEvent(ctx context.Context, e Event) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, e Event) error

func (f SubscriberFunc) HandleEvent(ctx context.Context, e Event) error { return f(ctx, e) }

// Bus publishes events to registered subscribers.  Publish must not block
// the caller on any single subscriber and must not report subscriber
// failures: the state transition that triggered the event has already
// committed.
type Bus interface {
	Publish(ctx context.Context, e Event)
}

// Dispatcher is a synchronous fan-out bus.  Each subscriber is invoked in
// registration order inside a recover guard, so a panicking or failing
// subscriber cannot starve the others.  Suitable as the in-process hub;
// slow transports (AMQP) should buffer internally.
type Dispatcher struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// Subscribe registers a subscriber for all subsequent events.
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, s)
}

func (d *Dispatcher) Publish(ctx context.Context, e Event) {
	d.mu.RLock()
	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()
	for _, s := range subs {
		deliver(ctx, s, e)
	}
}

func deliver(ctx context.Context, s Subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event: subscriber panicked on %s: %v", e.Name(), r)
		}
	}()
	if err := s.HandleEvent(ctx, e); err != nil {
		log.Printf("event: subscriber failed on %s: %v", e.Name(), err)
	}
}

// NopBus discards all events.  Used when no collaborators are wired, e.g.
// in unit tests of components that publish incidentally.
type NopBus struct{}

func (NopBus) Publish(context.Context, Event) {}
