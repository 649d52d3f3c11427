package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/config"
	"storefront/internal/delivery"
	"storefront/internal/repository"
	"storefront/internal/storage"
	"storefront/internal/usecase"
	"storefront/pkg/db"
	"storefront/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := logging.New("info")
	cfg := config.LoadConfig(logger)
	logging.SetLevel(logger, cfg.LogLevel)
	if err := cfg.RequireJWTSecret(); err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	logger.Info("Starting storefront...")
	logger.Infof("Log level set to: %s", logger.GetLevel().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		logger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer database.Close()
	if err := db.Migrate(ctx, database); err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	logger.Info("Database connection established.")

	files, err := storage.NewLocalStorage(cfg.UploadDir, cfg.MaxUploadBytes, logger)
	if err != nil {
		logger.Fatalf("FATAL: Could not prepare upload directory: %v", err)
	}

	// --- Dependency Injection ---
	userRepo := repository.NewPostgresUserRepository(database, logger)
	categoryRepo := repository.NewPostgresCategoryRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	cartRepo := repository.NewPostgresCartRepository(database, logger)
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	applicationRepo := repository.NewPostgresApplicationRepository(database, logger)
	messageRepo := repository.NewPostgresMessageRepository(database, logger)
	logger.Info("Repositories initialized.")

	authUseCase := usecase.NewAuthUseCase(userRepo, cfg.JWTSecret, cfg.JWTTTL, logger)
	categoryUseCase := usecase.NewCategoryUseCase(categoryRepo, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, categoryRepo, orderRepo, logger)
	cartUseCase := usecase.NewCartUseCase(cartRepo, productRepo, logger)
	stock := usecase.NewStockAdjuster(productRepo, cfg.StockWorkers, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, productRepo, cartRepo, files, stock, cfg.Tolerance(), logger)
	applicationUseCase := usecase.NewApplicationUseCase(applicationRepo, files, logger)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, logger)
	logger.Info("Use cases initialized.")

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authUseCase.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatalf("FATAL: Could not provision admin account: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := delivery.NewRouter(delivery.Handlers{
		Auth:         delivery.NewAuthHandler(authUseCase, logger),
		Categories:   delivery.NewCategoryHandler(categoryUseCase, logger),
		Products:     delivery.NewProductHandler(productUseCase, logger),
		Cart:         delivery.NewCartHandler(cartUseCase, logger),
		Orders:       delivery.NewOrderHandler(orderUseCase, logger),
		Applications: delivery.NewApplicationHandler(applicationUseCase, logger),
		Messages:     delivery.NewMessageHandler(messageUseCase, logger),
		Health:       delivery.NewHealthHandler(database, logger),
	}, authUseCase, cfg.MaxUploadBytes, logger)
	logger.Info("Routes registered.")

	// --- Start Server ---
	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}
	go func() {
		logger.Infof("Starting server on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Failed to start server on port %s: %v", cfg.HTTPPort, err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shut down: %v", err)
	}
	logger.Info("Server stopped.")
}
