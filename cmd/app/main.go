package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightinventory/api"
	"github.com/Domenick1991/flightinventory/config"
	"github.com/Domenick1991/flightinventory/internal/bootstrap"
	"github.com/Domenick1991/flightinventory/internal/cache"
	"github.com/Domenick1991/flightinventory/internal/kafka"
	"github.com/Domenick1991/flightinventory/internal/logger"
	"github.com/Domenick1991/flightinventory/internal/service/booking"
	"github.com/Domenick1991/flightinventory/internal/service/flights"
	"github.com/Domenick1991/flightinventory/internal/service/inventory"
	"github.com/Domenick1991/flightinventory/internal/service/users"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()

	flightOpts := []flights.FlightServiceOption{flights.WithLogger(log)}
	inventoryOpts := []inventory.InventoryServiceOption{inventory.WithLogger(log)}
	bookingOpts := []booking.BookingServiceOption{
		booking.WithLogger(log),
		booking.WithTxTimeout(cfg.Booking.TxTimeout()),
	}

	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.SearchCacheTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, searches will miss the cache", slog.Any("error", err))
		}
		flightOpts = append(flightOpts, flights.WithCache(redisCache))
		inventoryOpts = append(inventoryOpts, inventory.WithCache(redisCache))
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
	}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.Warn("kafka unavailable, events will be dropped", slog.Any("error", err))
		}
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
		if cfg.Kafka.FlightEventsTopic != "" {
			flightOpts = append(flightOpts, flights.WithProducer(producer, cfg.Kafka.FlightEventsTopic))
		}
	}

	flightService := flights.NewFlightService(store.Flights, store.SeatClasses, flightOpts...)
	inventoryService := inventory.NewInventoryService(store.Flights, store.SeatClasses, inventoryOpts...)
	bookingService := booking.NewBookingService(store, bookingOpts...)
	userService := users.NewUserService(store.Users, users.WithLogger(log))

	api.RegisterValidators()
	return bootstrap.Run(ctx, cfg, log,
		api.NewFlightHandler(flightService, inventoryService),
		api.NewBookingHandler(bookingService),
		api.NewUserHandler(userService),
	)
}
