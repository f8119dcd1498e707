package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/mrdatawolf/DM-Helper/config"
	"github.com/mrdatawolf/DM-Helper/db"
	"github.com/mrdatawolf/DM-Helper/feed"
	"github.com/mrdatawolf/DM-Helper/handlers"
	"github.com/mrdatawolf/DM-Helper/repositories"
	api "github.com/mrdatawolf/DM-Helper/routes"
	"github.com/mrdatawolf/DM-Helper/services"
	"github.com/mrdatawolf/DM-Helper/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Object storage for DM history exports (Cloudflare R2).
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 configuration absent, history export disabled")
	}

	// Live standings feed.
	wsHub := feed.NewHub()
	go wsHub.Run()
	logger.Info("standings feed hub started")

	// Repositories
	characterRepo := repositories.NewPostgresCharacterRepository(dbConn)
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	claimRepo := repositories.NewPostgresClaimRepository(dbConn)
	historyRepo := repositories.NewPostgresHistoryRepository(dbConn)
	perceptionRepo := repositories.NewPostgresPerceptionRepository(dbConn)
	logger.Info("repositories initialized")

	// Services
	txManager := db.NewTxManager(dbConn, logger)
	rankingService := services.NewRankingService(claimRepo)
	claimService := services.NewClaimService(txManager, poolRepo, claimRepo, historyRepo, rankingService, wsHub, logger)
	resolveService := services.NewResolveService(claimRepo, rankingService)
	perceptionService := services.NewPerceptionService(perceptionRepo, claimRepo)
	characterService := services.NewCharacterService(txManager, characterRepo, poolRepo)
	exportService := services.NewExportService(characterService, claimService, uploader)
	logger.Info("services initialized")

	// HTTP handlers
	claimHandler := handlers.NewClaimHandler(claimService, exportService)
	rankingHandler := handlers.NewRankingHandler(rankingService, perceptionService)
	resolveHandler := handlers.NewResolveHandler(resolveService)
	characterHandler := handlers.NewCharacterHandler(characterService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		claimHandler,
		rankingHandler,
		resolveHandler,
		characterHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
