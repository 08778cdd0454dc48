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

	"github.com/Dosada05/competition-manager/brackets"
	"github.com/Dosada05/competition-manager/config"
	"github.com/Dosada05/competition-manager/db"
	"github.com/Dosada05/competition-manager/handlers"
	"github.com/Dosada05/competition-manager/rating"
	"github.com/Dosada05/competition-manager/repositories"
	api "github.com/Dosada05/competition-manager/routes"
	"github.com/Dosada05/competition-manager/services"
	"github.com/Dosada05/competition-manager/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Репозитории: postgres при наличии DATABASE_URL, иначе в памяти
	var (
		competitionRepo repositories.CompetitionRepository
		teamRepo        repositories.TeamRepository
	)
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		if err := db.Migrate(ctx, dbConn); err != nil {
			return err
		}
		competitionRepo = repositories.NewPostgresCompetitionRepository(dbConn)
		teamRepo = repositories.NewPostgresTeamRepository(dbConn)
		logger.Info("database connection established")
	} else {
		competitionRepo = repositories.NewMemoryCompetitionRepository()
		teamRepo = repositories.NewMemoryTeamRepository()
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
	}

	// Архив завершённых соревнований в Cloudflare R2 (опционально)
	var archiver services.Archiver
	if r2 := cfg.R2(); !r2.IsZero() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = storage.NewCompetitionArchiver(uploader)
		logger.Info("Cloudflare R2 archive initialized", slog.String("bucket", cfg.R2BucketName))
	}

	// Внешний справочник рейтингов
	var source services.RatingSource
	if cfg.RatingsURL != "" {
		source = rating.NewHTMLSource(cfg.RatingsURL)
	}
	ratingCache := services.NewRatingReferenceCache(source, cfg.RatingsTTL, logger)

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	competitionService := services.NewCompetitionService(
		competitionRepo,
		teamRepo,
		ratingCache,
		rating.NewModel(rating.DefaultConfig()),
		wsHub,
		archiver,
		logger,
	)

	// Планировщик обновления справочника рейтингов
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if source != nil {
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.RatingsTTL),
			gocron.NewTask(func() {
				refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				if _, err := ratingCache.Refresh(refreshCtx); err != nil {
					logger.Error("Scheduler: rating reference refresh failed", slog.Any("error", err))
				}
			}),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule rating refresh: %w", err)
		}
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("failed to shutdown scheduler", slog.Any("error", err))
		}
	}()
	logger.Info("rating refresh scheduler started", slog.Duration("interval", cfg.RatingsTTL))

	// Инициализация обработчиков HTTP
	competitionHandler := handlers.NewCompetitionHandler(competitionService, logger)
	teamHandler := handlers.NewTeamHandler(services.NewTeamService(teamRepo, logger), logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, competitionService, cfg.CORSAllowedOrigins, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, competitionHandler, teamHandler, webSocketHandler, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			// If shutdown fails, force close.
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}
