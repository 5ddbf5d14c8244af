package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to every subscriber in order", func(t *testing.T) {
		d := NewDispatcher()
		var got []string
		d.Subscribe(SubscriberFunc(func(_ context.Context, e Event) error {
			got = append(got, "first:"+e.Name())
			return nil
		}))
		d.Subscribe(SubscriberFunc(func(_ context.Context, e Event) error {
			got = append(got, "second:"+e.Name())
			return nil
		}))
		d.Publish(ctx, SeatHeld{ShowtimeID: 1, Holder: "x", SeatIDs: []uint64{1}})
		assert.Equal(t, []string{"first:seat.held", "second:seat.held"}, got)
	})

	t.Run("a failing subscriber does not block the rest", func(t *testing.T) {
		d := NewDispatcher()
		delivered := 0
		d.Subscribe(SubscriberFunc(func(context.Context, Event) error {
			return errors.New("broker down")
		}))
		d.Subscribe(SubscriberFunc(func(context.Context, Event) error {
			delivered++
			return nil
		}))
		d.Publish(ctx, SeatExpired{ShowtimeID: 1, SeatID: 2})
		assert.Equal(t, 1, delivered)
	})

	t.Run("a panicking subscriber is contained", func(t *testing.T) {
		d := NewDispatcher()
		delivered := 0
		d.Subscribe(SubscriberFunc(func(context.Context, Event) error {
			panic("boom")
		}))
		d.Subscribe(SubscriberFunc(func(context.Context, Event) error {
			delivered++
			return nil
		}))
		require.NotPanics(t, func() {
			d.Publish(ctx, SeatConfirmed{ShowtimeID: 1, Holder: "x"})
		})
		assert.Equal(t, 1, delivered)
	})

	t.Run("publishing with no subscribers is fine", func(t *testing.T) {
		d := NewDispatcher()
		assert.NotPanics(t, func() {
			d.Publish(ctx, ShowtimeCancelled{ShowtimeID: 3})
		})
	})
}

func TestEventNames(t *testing.T) {
	cases := map[string]Event{
		"showtime.scheduled": ShowtimeScheduled{},
		"showtime.cancelled": ShowtimeCancelled{},
		"seat.held":          SeatHeld{},
		"seat.confirmed":     SeatConfirmed{},
		"seat.released":      SeatReleased{},
		"seat.expired":       SeatExpired{},
	}
	for want, e := range cases {
		assert.Equal(t, want, e.Name())
	}
}
