package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/movieranker/movieranker-backend/config"
	"github.com/movieranker/movieranker-backend/internal/app/controller"
	"github.com/movieranker/movieranker-backend/internal/app/repository"
	"github.com/movieranker/movieranker-backend/internal/app/service"
	"github.com/movieranker/movieranker-backend/internal/db"
	"github.com/movieranker/movieranker-backend/internal/middleware"
	"github.com/movieranker/movieranker-backend/internal/router"
	"github.com/movieranker/movieranker-backend/internal/scheduler"
	"github.com/movieranker/movieranker-backend/internal/storage"
	"github.com/movieranker/movieranker-backend/pkg/logger"
	"github.com/movieranker/movieranker-backend/pkg/mailer"
	"github.com/movieranker/movieranker-backend/pkg/util"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting MovieRanker Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	movieRepo := repository.NewMovieRepository(db.GetDB())
	resetRepo := repository.NewPasswordResetRepository(db.GetDB())

	// Pick the mail transport. Without SMTP credentials (local dev)
	// outgoing mail is logged instead of sent.
	var sender mailer.Sender
	if cfg.SMTP.Username != "" && cfg.SMTP.Password != "" {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	} else {
		logger.Warn("SMTP credentials not configured, emails will be logged only")
		sender = mailer.NewLogSender()
	}

	// Initialize services
	ownershipGuard := service.NewOwnershipGuard()
	authService := service.NewAuthService(
		userRepo,
		util.ValidatePasswordStrength,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	movieService := service.NewMovieService(movieRepo, ownershipGuard)
	shareService := service.NewShareService(movieRepo, sender)
	passwordResetService := service.NewPasswordResetService(
		resetRepo,
		userRepo,
		sender,
		util.ValidatePasswordStrength,
		cfg.App.BaseURL,
	)

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService)
	movieController := controller.NewMovieController(movieService)
	shareController := controller.NewShareController(shareService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start background cleanup of expired reset tokens
	cleanupScheduler := scheduler.NewResetCleanupScheduler(passwordResetService)
	if err := cleanupScheduler.Start(); err != nil {
		logger.Fatal("Failed to start reset cleanup scheduler", err)
	}
	defer cleanupScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		movieController,
		shareController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
