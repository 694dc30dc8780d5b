package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightinventory/config"
	"github.com/Domenick1991/flightinventory/internal/bootstrap"
	"github.com/Domenick1991/flightinventory/internal/email"
	"github.com/Domenick1991/flightinventory/internal/kafka"
	"github.com/Domenick1991/flightinventory/internal/logger"
	"github.com/Domenick1991/flightinventory/internal/service/booking"
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

	log := logger.New(cfg.Log.Level, cfg.Log.Format).With(slog.String("service", "worker"))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg.Database, log)
	if err != nil {
		log.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	bookingService := booking.NewBookingService(store, booking.WithLogger(log))

	if cfg.Kafka.Enabled() && cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
		defer consumer.Close()

		sender := email.NewSender(log)
		go func() {
			if err := consumer.ConsumeBookingEvents(ctx, sender.Send); err != nil {
				log.Error("consumer stopped", slog.Any("error", err))
			}
		}()
	} else {
		log.Warn("kafka notifications disabled")
	}

	auditTicker := time.NewTicker(cfg.Worker.AuditInterval())
	defer auditTicker.Stop()

	for {
		select {
		case <-auditTicker.C:
			audit(ctx, bookingService, log)
		case <-ctx.Done():
			log.Info("shutting down")
			return
		}
	}
}

func audit(ctx context.Context, svc booking.BookingUseCase, log *slog.Logger) {
	drifts, err := svc.AuditInventory(ctx)
	if err != nil {
		log.Error("inventory audit failed", slog.Any("error", err))
		return
	}
	log.Info("inventory audit finished", slog.Int("drifts", len(drifts)))
}
