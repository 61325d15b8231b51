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

	"github.com/SAP-F-2025/survey-assistant/internal/config"
	"github.com/SAP-F-2025/survey-assistant/internal/handlers"
	"github.com/SAP-F-2025/survey-assistant/internal/services"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/SAP-F-2025/survey-assistant/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewSlog(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	deps, cleanup, err := pkg.BuildServiceDeps(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialise dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	v := validator.New()
	deps.Validator = v
	serviceManager := services.NewServiceManager(deps)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestID(), utils.LoggerMiddleware(utils.NewSlogLogger(logger)))
	handlers.NewHandlerManager(serviceManager, v, utils.NewSlogLogger(logger)).SetupRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(server, logger)
}

func gracefulShutdown(server *http.Server, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced server shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
