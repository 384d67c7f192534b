package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/config"
	"github.com/georgemunganga/printpress-backend/internal/db"
	"github.com/georgemunganga/printpress-backend/internal/mail"
	"github.com/georgemunganga/printpress-backend/internal/modules/auth"
	"github.com/georgemunganga/printpress-backend/internal/modules/customer"
	"github.com/georgemunganga/printpress-backend/internal/modules/expense"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/modules/payment"
	"github.com/georgemunganga/printpress-backend/internal/modules/realtime"
	"github.com/georgemunganga/printpress-backend/internal/modules/report"
	"github.com/georgemunganga/printpress-backend/internal/modules/user"
	"github.com/georgemunganga/printpress-backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// ── Delivery: mail, realtime, outbox ────────────────────
	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			From:      cfg.EmailFrom,
			PerMinute: cfg.EmailRatePerMinute,
		}, logger)
	} else {
		mailer = mail.NewLogMailer(logger)
	}

	hub := realtime.NewHub(logger)
	notificationRepo := notification.NewPostgresRepository(pg)
	dispatcher := notification.NewDispatcher(notificationRepo, hub, mailer, logger)
	outbox := notification.NewOutbox(dispatcher, logger,
		notification.WithBuffer(cfg.OutboxBuffer),
		notification.WithWorkers(cfg.OutboxWorkers),
	)
	outbox.Start()
	notifier := notification.NewRecorder(dispatcher, outbox)

	// ── Ledger ──────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(pg)
	userService := user.NewService(userRepo, notifier, 0)
	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.AccessTokenTTL, 0)

	customerService := customer.NewService(customer.NewPostgresRepository(pg))
	jobService := job.NewService(job.NewPostgresRepository(pg), notifier, cfg.BusinessName, cfg.CurrencySymbol)
	inventoryService := inventory.NewService(inventory.NewPostgresRepository(pg), notifier)
	expenseService := expense.NewService(expense.NewPostgresRepository(pg))

	// ── Reporting ───────────────────────────────────────────
	reportService := report.NewService(report.NewPostgresRepository(pg), cfg.BusinessName, cfg.CurrencySymbol)
	paymentService := payment.NewService(payment.NewPostgresRepository(pg), reportService, notifier, payment.Business{
		Name:    cfg.BusinessName,
		Phone:   cfg.BusinessPhone,
		Address: cfg.BusinessAddress,
	}, cfg.CurrencySymbol)

	scheduler, err := notification.NewScheduler(notificationRepo, reportService, mailer, logger,
		cfg.MonthlyReportCron, cfg.NotificationPurgeCron)
	if err != nil {
		logger.Error("failed to build scheduler", "err", err)
		os.Exit(1)
	}
	scheduler.Start()

	// ── Router ──────────────────────────────────────────────
	authHandler := auth.NewHandler(authService)
	wsHandler := realtime.NewHandler(hub, authService, cfg.WSAuthTimeout, logger,
		realtime.WithWriteTimeout(cfg.WSWriteTimeout))
	router := server.NewRouter(cfg, logger, authService, server.Handlers{
		Health:   server.HealthHandler{DB: pg},
		Public:   authHandler,
		Realtime: wsHandler,
		Protected: []server.Routes{
			authHandler,
			user.NewHandler(userService),
			customer.NewHandler(customerService),
			job.NewHandler(jobService),
			payment.NewHandler(paymentService),
			inventory.NewHandler(inventoryService, reportService),
			expense.NewHandler(expenseService),
			notification.NewHandler(notification.NewService(notificationRepo)),
			report.NewHandler(reportService),
			realtime.NewStatusHandler(hub),
		},
	})

	serveErr := server.Start(ctx, cfg, router, logger)

	// HTTP has drained; nothing publishes after this point.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler stop", "err", err)
	}
	if err := outbox.Stop(shutdownCtx); err != nil {
		logger.Warn("outbox stop", "err", err)
	}
	hub.Close()

	if serveErr != nil {
		logger.Error("server error", "err", serveErr)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
