package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/config"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/orders"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// reservation-worker releases slot reservations whose checkout was never
// paid, on a fixed interval. Run it as a single instance alongside the API.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("reservation worker requires DATABASE_URL")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	store := orders.NewStore(pool)
	sweeper := orders.NewExpiryWorker(store, cfg.ReservationSweepInterval, bookingMetrics, logger)
	go sweeper.Run(ctx)

	// The worker's port serves only its metrics.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("reservation worker shutting down")
	cancel()
	time.Sleep(2 * time.Second)
}
