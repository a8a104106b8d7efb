package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chronoquiz/quiz-service/internal/cache"
	"github.com/chronoquiz/quiz-service/internal/config"
	"github.com/chronoquiz/quiz-service/internal/handlers"
	"github.com/chronoquiz/quiz-service/internal/repositories/postgres"
	"github.com/chronoquiz/quiz-service/internal/services"
	"github.com/chronoquiz/quiz-service/internal/utils"
	"github.com/chronoquiz/quiz-service/pkg"
)

const sweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	repo := postgres.NewRepository(db)

	// Leaderboards work without redis; the cache is an optimization.
	var cacheService cache.CacheService
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, leaderboard caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	validator := utils.NewValidator()
	shareCodes := services.NewShareCodeGenerator(repo.Quiz(), slogger)
	quizService := services.NewQuizService(repo, slogger, validator, shareCodes, publisher)
	sessionService := services.NewSessionService(repo, slogger, validator, publisher, cfg.SessionTTL)
	leaderboardService := services.NewLeaderboardService(repo, slogger, cacheService, cfg.LeaderboardCacheTTL, cfg.LeaderboardSize)
	exportService := services.NewExportService(repo, slogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		quizService,
		sessionService,
		leaderboardService,
		exportService,
		logger,
	)
	handlerManager.SetupRoutes(router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runSweeper(ctx, sessionService, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting quiz service",
			"port", cfg.Port,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// runSweeper periodically purges sessions that expired without finishing.
func runSweeper(ctx context.Context, sessionService services.SessionService, logger utils.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessionService.SweepExpired(ctx); err != nil {
				logger.Error("Session sweep failed", "error", err)
			}
		}
	}
}
