package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/avelier/event-ticketing/internal/config"
	"github.com/avelier/event-ticketing/internal/database"
	"github.com/avelier/event-ticketing/internal/handler"
	"github.com/avelier/event-ticketing/internal/middleware"
	"github.com/avelier/event-ticketing/internal/queue"
	"github.com/avelier/event-ticketing/internal/repository"
	"github.com/avelier/event-ticketing/internal/router"
	"github.com/avelier/event-ticketing/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  nil means
	// Redis was unreachable; both middlewares degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	organisers := repository.NewOrganiserRepo(db)
	tokens := repository.NewTokenRepo(db)
	settings := repository.NewSettingsRepo(db)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)
	bookings := repository.NewBookingRepo(db)

	lifecycle := service.NewLifecycle(events, tickets)
	reservations := service.NewReservation(events, tickets, bookings)

	authH := handler.NewAuthHandler(cfg, organisers, tokens)
	organiserH := handler.NewOrganiserHandler(lifecycle, events, tickets, bookings, settings)
	publicH := handler.NewPublicHandler(events, tickets, bookings)
	reservationH := handler.NewReservationHandler(reservations, events)

	var cacheMW, limitMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		limitMW = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}

	// The consumer runs for the life of the process and reconnects on
	// broker failures.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicH, reservationH, cacheMW, limitMW)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterOrganiser(e, organiserH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
