package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appCheckout "github.com/quantium/marketplace-checkout/internal/application/checkout"
	appInventory "github.com/quantium/marketplace-checkout/internal/application/inventory"
	appNotification "github.com/quantium/marketplace-checkout/internal/application/notification"
	appOnboarding "github.com/quantium/marketplace-checkout/internal/application/onboarding"
	"github.com/quantium/marketplace-checkout/internal/config"
	"github.com/quantium/marketplace-checkout/internal/domain/catalog"
	httptransport "github.com/quantium/marketplace-checkout/internal/infrastructure/http"
	"github.com/quantium/marketplace-checkout/internal/infrastructure/mail"
	"github.com/quantium/marketplace-checkout/internal/infrastructure/memory"
	"github.com/quantium/marketplace-checkout/internal/infrastructure/outbox"
	"github.com/quantium/marketplace-checkout/internal/infrastructure/paymentsim"
	"github.com/quantium/marketplace-checkout/internal/pkg/logging"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	platformSender = "team@quantium.example.com"
	teamEmail      = "team@quantium.example.com"
)

func main() {
	cfg := config.Load()

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	prometheus.MustRegister(httpRequests, httpDurations)

	catalogRepo := memory.NewCatalogRepository()
	directory := memory.NewBusinessDirectory()
	gateway := paymentsim.NewGateway(paymentsim.Options{
		WebhookSecret:        cfg.WebhookSecret,
		OnboardingReturnURL:  cfg.OnboardingReturnURL,
		OnboardingRefreshURL: cfg.OnboardingRefreshURL,
	})

	if cfg.Env == "dev" {
		seedDemoCatalog(baseLogger, catalogRepo)
	}

	bus := outbox.NewBus(baseLogger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	checkoutService := appCheckout.NewService(catalogRepo, directory, gateway, appCheckout.Options{
		Currency:   cfg.Currency,
		SuccessURL: cfg.SuccessURL,
		CancelURL:  cfg.CancelURL,
	})
	reconciler := appInventory.NewReconciler(catalogRepo, cfg.DecrementMaxRetries)
	notificationService := appNotification.NewService(cfg.WebhookSecret, cfg.WebhookTolerance, reconciler)
	onboardingService := appOnboarding.NewService(directory, gateway, bus)

	mailWorker := mail.NewWorker(bus, mail.NewLogMailer(), platformSender, teamEmail)
	mailWorker.Start()

	handler := httptransport.NewHandler(checkoutService, notificationService, onboardingService)
	observe := httptransport.ObservabilityMiddleware(baseLogger, httpRequests, httpDurations)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", observe(handler.Router()))

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

// seedDemoCatalog loads a few products so local runs have something to sell.
func seedDemoCatalog(logger *zap.Logger, repo *memory.CatalogRepository) {
	seed := []struct {
		id     string
		title  string
		price  string
		supply int
		owner  string
	}{
		{"p1", "Canvas Tote", "40", 10, "biz@example.com"},
		{"p2", "Desk Lamp", "75.50", 25, "biz@example.com"},
		{"p3", "Standing Desk", "1250", 3, "biz@example.com"},
	}

	ctx := context.Background()
	for _, s := range seed {
		product, err := catalog.NewProduct(s.id, s.title, decimal.RequireFromString(s.price), s.supply, s.owner)
		if err != nil {
			logger.Warn("seed_product_invalid", zap.String("product_id", s.id), zap.Error(err))
			continue
		}
		if err := repo.Save(ctx, product); err != nil {
			logger.Warn("seed_product_save_failed", zap.String("product_id", s.id), zap.Error(err))
		}
	}
	logger.Info("demo_catalog_seeded", zap.Int("products", len(seed)))
}
