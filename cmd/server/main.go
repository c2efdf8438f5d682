package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/repository"
	"adam-store/backend/pkg/config"
	"adam-store/backend/pkg/di"
	"adam-store/backend/pkg/logger"
	"adam-store/backend/pkg/observability"
	"adam-store/backend/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	appLog := logger.New(logConfig)
	logger.SetGlobal(appLog)

	appLog.Info("starting adam-store backend", "env", cfg.Server.Env)

	shutdownTracing := observability.SetupTracing("adam-store-backend")
	defer shutdownTracing()
	observability.SetupPrometheusMetrics(":2112")

	// Relational store (users)
	db, err := config.NewDB()
	if err != nil {
		appLog.LogError(err, "failed to initialize database")
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		appLog.LogError(err, "failed to migrate database")
		os.Exit(1)
	}

	// Document store (conversations, chat messages)
	mongoDB, err := config.NewMongo(context.Background())
	if err != nil {
		appLog.LogError(err, "failed to initialize mongo")
		os.Exit(1)
	}

	container := di.New(cfg, appLog, db, mongoDB)

	if repo, ok := container.ChatMessageRepository.(*repository.MongoChatMessageRepository); ok {
		if err := repo.EnsureIndexes(context.Background()); err != nil {
			appLog.LogError(err, "failed to create chat message indexes")
		}
	}

	r := router.New(container)
	r.SetupRoutes()

	// No write timeout: long-lived websocket connections share this server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r.Engine,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	go func() {
		appLog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.LogError(err, "server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.LogError(err, "server forced to shutdown")
	}

	appLog.Info("server exited gracefully")
}
