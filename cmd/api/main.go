// Package main is the composition root for the laundry backend API server.
// It wires configuration, database, event bus, and all domain modules, then
// starts the HTTP server.
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
	"lavanderia_backend/internal/conversations"
	"lavanderia_backend/internal/customers"
	"lavanderia_backend/internal/email"
	apphttp "lavanderia_backend/internal/http"
	"lavanderia_backend/internal/http/router"
	"lavanderia_backend/internal/notification"
	notifrepo "lavanderia_backend/internal/notification/repository"
	"lavanderia_backend/internal/orders"
	"lavanderia_backend/internal/webhook"
	"lavanderia_backend/internal/whatsapp"
	"lavanderia_backend/migrations"
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
	log.Info("starting api server", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure
	// ========================================================================

	err = withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	})
	if err != nil {
		log.Error("failed to run migrations", "error", err)
		panic("failed to run migrations: " + err.Error())
	}

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

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing).
	notificationModule := notification.New(whatsappClient, emailSender, notifrepo.New(pool), log)
	notificationModule.RegisterHandlers(eventBus)

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

	conversationsModule, err := conversations.NewModule(
		pool,
		adapters.NewCustomerDirectory(customersModule.Service()),
		whatsappClient,
		eventBus,
		cfg,
		val,
		log,
	)
	if err != nil {
		log.Error("failed to initialize conversations module", "error", err)
		panic("failed to initialize conversations module: " + err.Error())
	}

	webhookModule := webhook.NewModule(conversationsModule.Service(), cfg, val, log)
	notificationModule.SetConversationLog(adapters.NewConversationLog(conversationsModule.Service()))

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			customersModule,
			catalogModule,
			ordersModule,
			conversationsModule,
			webhookModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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
