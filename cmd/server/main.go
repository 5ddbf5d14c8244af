package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinechain/seat-reservation-engine/internal/config"
	"github.com/cinechain/seat-reservation-engine/internal/database"
	"github.com/cinechain/seat-reservation-engine/internal/event"
	"github.com/cinechain/seat-reservation-engine/internal/handler"
	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/ratelimit"
	"github.com/cinechain/seat-reservation-engine/internal/repository"
	"github.com/cinechain/seat-reservation-engine/internal/reservation"
	"github.com/cinechain/seat-reservation-engine/internal/router"
	"github.com/cinechain/seat-reservation-engine/internal/scheduler"
	"github.com/cinechain/seat-reservation-engine/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event bus: audit log always, AMQP forwarder when a broker is configured.
	bus := event.NewDispatcher()
	bus.Subscribe(event.NewAuditLogger(cfg.AuditLogPath))
	if cfg.AMQPURL != "" {
		bus.Subscribe(event.NewAMQPForwarder(ctx, cfg.AMQPURL))
	}

	// Storage: MySQL when configured, in-process stores otherwise.
	var (
		seats     store.SeatStateStore
		rooms     scheduler.RoomStore
		showtimes scheduler.ShowtimeStore
	)
	if cfg.DBHost != "" {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		defer db.Close()
		seats = repository.NewSeatStateRepo(db)
		rooms = repository.NewRoomRepo(db)
		showtimes = repository.NewShowtimeRepo(db)
		log.Printf("storage: mysql at %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	} else {
		seats = store.NewMemoryStore()
		rooms = repository.NewMemoryRoomStore()
		showtimes = repository.NewMemoryShowtimeStore()
		log.Printf("storage: in-process (DB_HOST unset)")
	}

	// The catalog module is an external collaborator; until its client is
	// wired this seeded catalog serves scheduling lookups.
	movies := repository.NewMemoryMovieCatalog(
		model.Movie{ID: 1, Title: "placeholder feature", Runtime: 2 * time.Hour},
	)

	coord := reservation.NewCoordinator(seats, bus)
	sched := scheduler.New(rooms, showtimes, movies, seats, coord, bus, cfg.CleanupBuffer)
	go reservation.NewSweeper(coord, cfg.SweepInterval).Run(ctx)

	// Rate limiting: shared Redis counters when reachable, else in-process.
	var counters ratelimit.CounterStore
	if rdb := config.NewRedisClient(); rdb != nil {
		counters = ratelimit.NewRedisCounterStore(rdb, "rl")
		log.Printf("ratelimit: redis counters")
	} else {
		counters = ratelimit.NewMemoryCounterStore()
		log.Printf("ratelimit: in-process counters (redis unavailable)")
	}
	limiter := ratelimit.NewLimiter(counters)
	limits := config.LoadRateLimits()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBooking(e, handler.NewBookingHandler(coord, cfg.HoldTTL), limiter, limits, cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewRoomHandler(rooms), handler.NewShowtimeHandler(sched), limiter, limits)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
