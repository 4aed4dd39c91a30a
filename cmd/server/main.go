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

	"meatmarket-api/internal/config"
	"meatmarket-api/internal/database"
	"meatmarket-api/internal/handlers"
	custommw "meatmarket-api/internal/middleware"
	"meatmarket-api/internal/repositories"
	"meatmarket-api/internal/services"
	"meatmarket-api/internal/similarity"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("database initialization failed", "error", err)
		os.Exit(1)
	}

	cutRepo := repositories.NewNormalizedCutRepository(db)
	variationRepo := repositories.NewCutVariationRepository(db)

	engine := similarity.NewEngine()
	normLogger := services.NewNormalizationLogger(logger)
	metrics := services.NewPrometheusMetrics()

	matcherService := services.NewMatcherService(cutRepo, variationRepo, engine)
	normalizerService := services.NewNormalizerService(
		matcherService, cutRepo, variationRepo, cfg.Matching, normLogger, metrics)
	statsService := services.NewStatsService(cutRepo, metrics)
	tokenService := services.NewTokenService(&cfg.Auth)

	suggestionHandler := handlers.NewSuggestionHandler(
		matcherService, normalizerService, statsService, normLogger, metrics, cfg.Matching)
	cutHandler := handlers.NewCutHandler(cutRepo, variationRepo, engine)
	healthHandler := handlers.NewHealthCheckHandler(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = custommw.CustomHTTPErrorHandler

	e.Use(custommw.RequestID())
	e.Use(custommw.PanicRecovery())
	e.Use(custommw.SecurityHeaders())
	e.Use(custommw.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cuts := e.Group("/cuts")
	cuts.GET("/suggest", suggestionHandler.Suggest)
	cuts.GET("/stats", suggestionHandler.Stats)
	cuts.POST("/analyze", suggestionHandler.Analyze)
	cuts.POST("/normalize", suggestionHandler.Normalize, custommw.RequireAuth(tokenService))
	cuts.POST("/bulk-import", suggestionHandler.BulkImport,
		custommw.RequireAuth(tokenService), custommw.RequireAdmin())
	cuts.GET("", cutHandler.ListCuts)
	cuts.GET("/:id", cutHandler.GetCut)
	cuts.GET("/:id/variations", cutHandler.ListVariations)

	admin := e.Group("/admin", custommw.RequireAuth(tokenService), custommw.RequireAdmin())
	admin.POST("/cuts", cutHandler.CreateCut)
	admin.PUT("/cuts/:id", cutHandler.UpdateCut)
	admin.DELETE("/cuts/:id", cutHandler.DeleteCut)
	admin.POST("/variations/:id/verify", cutHandler.VerifyVariation)
	admin.POST("/variations/:id/reassign", cutHandler.ReassignVariation)
	admin.DELETE("/variations/:id", cutHandler.DeleteVariation)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server", "addr", addr, "environment", cfg.Server.Environment)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func logLevel(cfg *config.Config) slog.Level {
	if cfg.IsDevelopment() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
