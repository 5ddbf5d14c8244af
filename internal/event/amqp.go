package event

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const eventsQueueName = "reservation.events"

// AMQPForwarder ships every event to a durable RabbitMQ queue for the
// sales, audit and notification modules.  Events are handed off to a
// buffered channel so the reservation path never waits on the broker; the
// background loop owns the connection and redials with backoff.  When the
// buffer is full the event is dropped with a log line rather than blocking
// a committed state transition.
type AMQPForwarder struct {
	url    string
	events chan envelope
}

type envelope struct {
	name string
	body []byte
}

// NewAMQPForwarder creates a forwarder for the given broker URL and starts
// its delivery loop.  Stop it by cancelling ctx.
func NewAMQPForwarder(ctx context.Context, url string) *AMQPForwarder {
	f := &AMQPForwarder{
		url:    url,
		events: make(chan envelope, 256),
	}
	go f.run(ctx)
	return f
}

// HandleEvent queues the event for delivery.  Never blocks.
func (f *AMQPForwarder) HandleEvent(_ context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case f.events <- envelope{name: e.Name(), body: body}:
	default:
		log.Printf("amqp-forwarder: buffer full, dropping %s", e.Name())
	}
	return nil
}

func (f *AMQPForwarder) run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(f.url)
		if err != nil {
			log.Printf("amqp-forwarder: dial failed: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		if err := f.deliverLoop(ctx, conn); err != nil {
			log.Printf("amqp-forwarder: delivery loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
	}
}

func (f *AMQPForwarder) deliverLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so events survive broker restarts; declaration is idempotent.
	if _, err := ch.QueueDeclare(eventsQueueName, true, false, false, false, nil); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-f.events:
			pub := amqp.Publishing{
				ContentType:  "application/json",
				Type:         env.name,
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now().UTC(),
				Body:         env.body,
			}
			if err := ch.PublishWithContext(ctx, "", eventsQueueName, false, false, pub); err != nil {
				// Re-queue the event for the next connection if there is room.
				select {
				case f.events <- env:
				default:
				}
				return err
			}
		}
	}
}
