// Package main is the composition root for the scheduler worker. It runs the
// recurring sweeps: pickup reminders for orders sitting in ready, and
// win-back follow-ups for customers who have gone quiet.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/internal/adapters"
	"lavanderia_backend/internal/catalog"
	"lavanderia_backend/internal/customers"
	"lavanderia_backend/internal/email"
	"lavanderia_backend/internal/notification"
	notifrepo "lavanderia_backend/internal/notification/repository"
	"lavanderia_backend/internal/orders"
	"lavanderia_backend/internal/scheduler"
	"lavanderia_backend/internal/whatsapp"
	"lavanderia_backend/platform/config"
	"lavanderia_backend/platform/db"
	"lavanderia_backend/platform/events"
	"lavanderia_backend/platform/logger"
	"lavanderia_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	err = withRetry(ctx, log, "database pool", 5, 2*time.Second, func() error {
		var poolErr error
		pool, poolErr = db.NewPool(ctx, cfg)
		return poolErr
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	emailSender := email.NewSender(cfg)
	whatsappClient := whatsapp.NewClient(cfg, log)
	val := validator.New()

	notificationModule := notification.New(whatsappClient, emailSender, notifrepo.New(pool), log)
	notificationModule.RegisterHandlers(eventBus)

	// Worker-side module wiring (no HTTP handlers required).
	customersModule := customers.NewModule(pool, cfg.GetDefaultLanguage(), val, log)
	catalogModule := catalog.NewModule(pool, val, log)
	ordersModule := orders.NewModule(
		pool,
		adapters.NewCatalogPricing(catalogModule.Repository()),
		adapters.NewCustomerAccounts(customersModule.Service()),
		eventBus,
		cfg.GetTaxRate(),
		val,
		log,
	)

	pickupSweep := scheduler.NewPickupReminderSweep(
		ordersModule.Service(),
		customersModule.Service(),
		notificationModule,
		cfg.GetPickupReminderAge(),
		log,
	)
	followUpSweep := scheduler.NewFollowUpSweep(
		customersModule.Repository(),
		notificationModule,
		cfg.GetFollowUpAge(),
		cfg.GetFollowUpWindow(),
		cfg.GetFollowUpBatchSize(),
		log,
	)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	enqueuer := scheduler.NewEnqueuer(client, 0, 0, log)
	go enqueuer.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, pickupSweep, followUpSweep, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("scheduler stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		delay := time.Duration(attempt*attempt) * baseDelay
		log.Warn("startup step failed, retrying",
			"step", name, "attempt", attempt, "retry_in", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
