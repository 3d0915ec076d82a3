package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ferremas-cl/storefront/internal/paylog"
	paylogsqlite "github.com/ferremas-cl/storefront/internal/paylog/sqlite"
	"github.com/ferremas-cl/storefront/internal/pkg/cache"
	"github.com/ferremas-cl/storefront/internal/pkg/telemetry"
	"github.com/ferremas-cl/storefront/internal/storefront/core/checkout"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
	"github.com/ferremas-cl/storefront/internal/storefront/core/reports"
	"github.com/ferremas-cl/storefront/internal/storefront/events"
	"github.com/ferremas-cl/storefront/internal/storefront/infra/adapters/rest"
	"github.com/ferremas-cl/storefront/internal/storefront/infra/adapters/webpay"
	"github.com/ferremas-cl/storefront/internal/storefront/infra/httpx"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "storefront"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store := newStore()
	sessions := httpx.NewSessions(store)
	pending := checkout.NewPendingStore(store)

	attemptLog := newAttemptLog()
	publisher := newPublisher()

	gateway := webpay.NewClient(webpay.DefaultConfig(getEnv("WEBPAY_API_URL", "http://localhost:5001/api")))
	catalog := rest.NewInventoryClient(getEnv("INVENTORY_API_URL", "http://localhost:5000/api"))
	sales := rest.NewSalesClient(getEnv("SALES_API_URL", "http://localhost:5002/api"))
	rates := rest.NewRatesClient(os.Getenv("RATES_API_URL"))

	baseURL := getEnv("BASE_URL", "http://localhost:8080")
	purchase := checkout.NewPurchaseService(catalog, sales, gateway, pending, attemptLog, baseURL)
	flow := checkout.NewFlow(gateway, pending, attemptLog, publisher)
	reportsSvc := reports.NewService(catalog, sales)

	handler := httpx.NewHandler(sessions, catalog, sales, rates, purchase, flow, reportsSvc, attemptLog)
	router := httpx.NewRouter(handler)

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("storefront running", "addr", addr, "base_url", baseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}

// newStore picks Redis when configured, falling back to the process-local
// store for development.
func newStore() cache.Store {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		slog.Info("using redis session store", "addr", addr)
		return cache.NewRedisStore(addr, "storefront")
	}
	slog.Warn("REDIS_ADDR not set, using in-memory session store")
	return cache.NewMemoryStore("storefront")
}

// newAttemptLog opens the SQLite payment attempt log. The storefront runs
// without it, just with a blind spot in the audit trail.
func newAttemptLog() paylog.Repository {
	path := getEnv("PAYLOG_DB", "paylog.db")
	repo, err := paylogsqlite.Open(path)
	if err != nil {
		slog.Error("failed to open payment attempt log, attempts will not be recorded", "path", path, "error", err)
		return nil
	}
	return repo
}

// newPublisher connects the optional Kafka producer.
func newPublisher() ports.EventPublisher {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		slog.Info("KAFKA_BROKERS not set, payment events disabled")
		return nil
	}
	producer, err := events.NewProducer(strings.Split(brokers, ","), os.Getenv("KAFKA_TOPIC"))
	if err != nil {
		slog.Error("failed to connect kafka producer, payment events disabled", "error", err)
		return nil
	}
	return producer
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
