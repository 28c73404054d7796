package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/iliyamo/pro-booking/internal/config"
	"github.com/iliyamo/pro-booking/internal/database"
	"github.com/iliyamo/pro-booking/internal/handler"
	"github.com/iliyamo/pro-booking/internal/middleware"
	"github.com/iliyamo/pro-booking/internal/queue"
	"github.com/iliyamo/pro-booking/internal/repository"
	"github.com/iliyamo/pro-booking/internal/router"
	"github.com/iliyamo/pro-booking/internal/service"
	"github.com/iliyamo/pro-booking/internal/telemetry"
)

const serviceName = "pro-booking"

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	shutdownTelemetry := telemetry.Setup(serviceName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if cfg.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db, cfg.DBDriver)
		cancel()
		if err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		log.Printf("schema migrated (driver=%s)", cfg.DBDriver)
	}

	// Notifications are optional.  The Notifier stays a nil interface when
	// no broker is configured so dispatch skips publishing entirely.
	var notifier service.Notifier
	if cfg.AMQPURL != "" {
		notifier = queue.NewPublisher(cfg.AMQPURL, cfg.EventsQueue)
		if cfg.BookingLogEnabled {
			go queue.StartBookingLogConsumer(cfg.AMQPURL, cfg.EventsQueue)
		}
	} else {
		log.Printf("AMQP_URL not set; booking notifications disabled")
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	bookings := repository.NewBookingRepo(db)
	vendors := repository.NewVendorRepo(db)
	h := handler.NewBookingHandler(
		service.NewReservationGuard(bookings, notifier),
		service.NewAvailability(bookings),
		service.NewLifecycle(bookings, notifier, cfg.AdminOverride),
		service.NewQuery(bookings),
		vendors,
		cfg.Location,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e, db)
	router.RegisterBookings(e, h, cfg.JWTSecret, limit)
	router.RegisterVendor(e, h, cfg.JWTSecret, limit)
	router.RegisterAdmin(e, h, cfg.JWTSecret)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(e, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (env=%s)", server.Addr, cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
