package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/northwind-commerce/api/internal/catalog"
	"github.com/northwind-commerce/api/internal/handlers"
	"github.com/northwind-commerce/api/internal/inventory"
	"github.com/northwind-commerce/api/internal/notifications"
	"github.com/northwind-commerce/api/internal/payments"
	"github.com/northwind-commerce/api/internal/platform/config"
	"github.com/northwind-commerce/api/internal/platform/observability"
	"github.com/northwind-commerce/api/internal/pricing"
	"github.com/northwind-commerce/api/internal/repositories/memory"
	"github.com/northwind-commerce/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	productRepo := memory.NewProductRepository()
	orderRepo := memory.NewOrderRepository()
	ledger := inventory.NewLedger()

	if err := catalog.Load(ctx, productRepo, ledger, catalog.DefaultSeed()); err != nil {
		logger.Fatal("failed to seed catalog", zap.Error(err))
	}

	pricingEngine, err := pricing.NewEngine(pricing.EngineDeps{Rules: pricing.DefaultRules()})
	if err != nil {
		logger.Fatal("failed to build pricing engine", zap.Error(err))
	}
	if cfg.Features.EnableBlackFriday {
		pricingEngine.PrependRule(pricing.BlackFridayRule{})
		logger.Info("black friday pricing enabled")
	}

	paymentManager, err := payments.NewDefaultManager()
	if err != nil {
		logger.Fatal("failed to build payment manager", zap.Error(err))
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build notifier", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Products: productRepo,
		Orders:   orderRepo,
		Ledger:   ledger,
		Pricing:  pricingEngine,
		Payments: paymentManager,
		Notifier: notifier,
		Logger:   observability.EventLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to build order service", zap.Error(err))
	}

	router := handlers.NewRouter(
		handlers.WithProductRoutes(handlers.NewProductHandlers(productRepo, ledger, pricingEngine).Routes),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(orderService).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func buildNotifier(cfg config.Config, logger *zap.Logger) (notifications.Notifier, error) {
	switch cfg.Notifications.Channel {
	case "email":
		return notifications.NewEmailNotifier(notifications.EmailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	default:
		return notifications.NewConsoleNotifier(logger), nil
	}
}
