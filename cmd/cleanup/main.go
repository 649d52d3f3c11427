// Command cleanup removes job applications of one status that are older than a cutoff,
// along with their stored resumes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"storefront/config"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/storage"
	"storefront/internal/usecase"
	"storefront/pkg/db"
	"storefront/pkg/logging"
)

func main() {
	status := flag.String("status", string(domain.ApplicationRejected), "application status to purge")
	olderThan := flag.String("older-than", "30d", "minimum age, e.g. 30d or 720h")
	flag.Parse()

	logger := logging.New("info")
	cfg := config.LoadConfig(logger)
	logging.SetLevel(logger, cfg.LogLevel)

	age, err := usecase.ParseAge(*olderThan)
	if err != nil {
		logger.Fatalf("FATAL: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		logger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer database.Close()

	files, err := storage.NewLocalStorage(cfg.UploadDir, cfg.MaxUploadBytes, logger)
	if err != nil {
		logger.Fatalf("FATAL: Could not open upload directory: %v", err)
	}

	uc := usecase.NewApplicationUseCase(repository.NewPostgresApplicationRepository(database, logger), files, logger)
	n, err := uc.DeleteApplicationsOlderThan(ctx, domain.ApplicationStatus(*status), age)
	if err != nil {
		logger.Errorf("Cleanup failed: %v", err)
		os.Exit(1)
	}
	logger.Infof("Removed %d %s applications older than %s", n, *status, *olderThan)
}
