package main

import (
	"context"
	"time"

	"guesthouse/internal/bookings/events"
	"guesthouse/internal/bookings/handler"
	"guesthouse/internal/bookings/repository"
	"guesthouse/internal/bookings/service"
	"guesthouse/internal/bookings/validator"
	mongoMigration "guesthouse/internal/migrations/mongo"
	"guesthouse/pkg/app"
	"guesthouse/pkg/auth"
	"guesthouse/pkg/config"
	"guesthouse/pkg/locale"
)

const (
	ServiceName = "acknowledgments"

	startupMigrationTimeout = 60 * time.Second
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	migrate(cfg)

	cfg.Log.Info("Starting Acknowledgments service")

	publisher, err := events.New(cfg.Kafka, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking events", "error", err)
	}

	bookingService := initServices(cfg, publisher)

	var eventStats handler.EventStats
	if stats, ok := publisher.(handler.EventStats); ok {
		eventStats = stats
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, eventStats, cfg.Log),
	)
	serverApp.OnShutdown("booking-events", publisher.Close)
	serverApp.OnShutdown("mongo", func() error {
		cfg.GracefulShutdown()
		return nil
	})
	serverApp.Run()
}

func migrate(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), startupMigrationTimeout)
	defer cancel()

	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	if _, err := mongoMigration.Run(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Startup migration failed", "error", err)
	}
}

func initServices(cfg *config.Config, publisher events.Publisher) service.BookingService {
	clock, err := locale.NewPropertyClock(cfg.PropertyTimezone)
	if err != nil {
		cfg.Log.Fatal("Invalid property timezone", "error", err)
	}

	bookingValidator := validator.NewBookingValidator(clock, cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewUnitLockRepository(cfg)

	operator := auth.NewSharedSecret(cfg.AdminSecret)
	if !operator.Configured() {
		cfg.Log.Warn("ADMIN_SECRET is not set; operator endpoints will reject every request")
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		bookingValidator,
		operator,
		publisher,
		clock,
		cfg.Log,
		service.Options{CorrectionAttempts: cfg.StoreTxMaxAttempts},
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"property_timezone", clock.Location().String(),
	)
	return bookingService
}
