package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"stagepass/api/routes"
	"stagepass/internal/refunds"
	"stagepass/internal/shared/config"
	"stagepass/internal/shared/database"
	"stagepass/internal/shared/middleware"
	"stagepass/internal/shared/validation"
	"stagepass/pkg/logger"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := validation.Register(); err != nil {
		appLogger.Error("failed to register custom validations", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.New(cfg)
	if err != nil {
		appLogger.Error("failed to connect to databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		appLogger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Kafka is optional: without it, event cancellations skip the async
	// fan-out and the stuck-refund sweep picks up the work.
	var publisher refunds.Publisher
	if cfg.Kafka.Enabled {
		publisher, err = refunds.NewKafkaPublisher(
			refunds.DefaultProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.EventCancelledTopic))
		if err != nil {
			appLogger.Error("failed to create Kafka publisher, continuing without it", slog.Any("error", err))
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	appRouter := routes.NewRouter(cfg, db, publisher)
	engine := gin.New()
	engine.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS())
	appRouter.SetupRoutes(engine)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	var consumer refunds.Consumer
	if cfg.Kafka.Enabled && publisher != nil {
		consumer, err = refunds.NewKafkaConsumer(
			refunds.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.RefundConsumerGroupID, cfg.Kafka.EventCancelledTopic),
			appRouter.RefundService(),
		)
		if err != nil {
			appLogger.Error("failed to create refund consumer, continuing without it", slog.Any("error", err))
		} else if err := consumer.Start(rootCtx); err != nil {
			appLogger.Error("failed to start refund consumer", slog.Any("error", err))
		}
	}

	sweeps := appRouter.Scheduler()
	sweeps.Start(rootCtx)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	sweeps.Stop()
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			appLogger.Error("Error stopping refund consumer", slog.Any("error", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}
	appLogger.Info("Server exited gracefully")
}
