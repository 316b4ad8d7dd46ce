package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/api/router"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	appconfig "github.com/faraz-lgtm/lsat-booking-platform/internal/config"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/customer"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/http/handlers"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/notify"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/orders"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/payments"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/reschedule"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lsat-booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// database/sql handle for the admin listing endpoints.
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer func() { _ = redisClient.Close() }()

	cartStore := cart.NewStore(redisClient, cfg.CartTTL)
	customerRepo := customer.NewPostgresRepository(pool)
	orderStore := orders.NewStore(pool)
	rescheduleStore := reschedule.NewStore(pool)
	tokenIssuer := reschedule.NewTokenIssuer(cfg.RescheduleTokenSecret, cfg.RescheduleTokenTTL)

	checkoutClient := payments.NewCheckoutClient(
		cfg.CheckoutSecretKey, cfg.CheckoutBaseURL,
		cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, logger,
	)

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else {
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(emailSender, logger)

	metricsHandler, bookingMetrics := setupMetrics()

	orderService := orders.NewService(
		orderStore, checkoutClient, tokenIssuer, notifier,
		cfg.PublicBaseURL, cfg.ReservationExpiryMinutes, bookingMetrics, logger,
	)

	// Background sweep of expired slot reservations.
	sweeper := orders.NewExpiryWorker(orderStore, cfg.ReservationSweepInterval, bookingMetrics, logger)
	go sweeper.Run(ctx)

	routerCfg := &router.Config{
		Logger:             logger,
		CartHandler:        handlers.NewCartHandler(cartStore, logger),
		CheckoutHandler:    handlers.NewCheckoutHandler(cartStore, customerRepo, orderService, cfg.BannerTTL, bookingMetrics, logger),
		OrdersHandler:      handlers.NewOrdersHandler(orderService, bookingMetrics, logger),
		RescheduleHandler:  handlers.NewRescheduleHandler(rescheduleStore, tokenIssuer, cfg.RescheduleConcurrency, cfg.RescheduleBannerTTL, bookingMetrics, logger),
		AdminOrdersHandler: handlers.NewAdminOrdersHandler(sqlDB, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PublicRateLimit:    cfg.PublicRateLimit,
		PublicBurst:        cfg.PublicRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupMetrics wires a dedicated registry so tests can assert on exposition
// output without the default registry's global state.
func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), bookingMetrics
}
