package reservation

import (
	"context"
	"log"
	"time"

	"github.com/cinechain/seat-reservation-engine/internal/event"
)

// Sweeper periodically expires overdue holds and publishes SeatExpired for
// each.  The store also treats expired holds as AVAILABLE on read, so the
// sweep only bounds how late the expiry notification can be, never whether
// a seat can be re-acquired.
type Sweeper struct {
	co       *Coordinator
	interval time.Duration
}

// NewSweeper builds a sweeper over the coordinator's store.  A
// non-positive interval falls back to one second.
func NewSweeper(co *Coordinator, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sweeper{co: co, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires everything overdue right now.  Exposed for tests and
// for callers that want an eager sweep before a read.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	expired, err := s.co.seats.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("reservation: expiry sweep failed: %v", err)
		return
	}
	for _, ex := range expired {
		s.co.bus.Publish(ctx, event.SeatExpired{
			ShowtimeID: ex.Key.ShowtimeID,
			Holder:     ex.Holder,
			SeatID:     ex.Key.SeatID,
		})
	}
}
