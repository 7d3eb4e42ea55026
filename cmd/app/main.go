package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MamzStore/ppobb/internal/catalog"
	"github.com/MamzStore/ppobb/internal/config"
	"github.com/MamzStore/ppobb/internal/db"
	"github.com/MamzStore/ppobb/internal/fulfillment"
	"github.com/MamzStore/ppobb/internal/ledger"
	"github.com/MamzStore/ppobb/internal/logger"
	"github.com/MamzStore/ppobb/internal/payment"
	"github.com/MamzStore/ppobb/internal/purchase"
	"github.com/MamzStore/ppobb/internal/server"
	"github.com/MamzStore/ppobb/internal/sweeper"
	"github.com/MamzStore/ppobb/internal/topup"
	"github.com/MamzStore/ppobb/internal/user"
)

func main() {
	logger.Init()
	logger.Info("Starting PPOB application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	ledgerRepo := ledger.NewRepository(database)
	catalogRepo := catalog.NewRepository(database)
	userRepo := user.NewRepository(database)
	purchaseRepo := purchase.NewRepository(database, ledgerRepo)
	topupRepo := topup.NewRepository(database, ledgerRepo)

	fulfillmentGW := fulfillment.NewClient(cfg.FulfillmentBaseURL, cfg.FulfillmentAPIKey)
	paymentGW := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAPIKey)

	sweeperService := sweeper.New(cfg.RedisAddr)
	defer sweeperService.Close()

	purchaseService := purchase.NewService(purchaseRepo, catalogRepo, userRepo, ledgerRepo, fulfillmentGW, sweeperService)
	topupService := topup.NewService(topupRepo, paymentGW, cfg.WebhookCallbackURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sweeperService.Recover(ctx, purchaseRepo); err != nil {
		logger.Error("Failed to recover pending sweeps", "error", err)
	}
	go sweeperService.Start(ctx, purchaseService)

	srv := server.New(database, cfg, purchaseService, topupService)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
