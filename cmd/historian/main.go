// cmd/historian/main.go drains game events from the Redis queue into PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/promptwars/internal/cache"
	"github.com/jason-s-yu/promptwars/internal/config"
	"github.com/jason-s-yu/promptwars/internal/database"
	"github.com/jason-s-yu/promptwars/internal/historian"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatalf("failed to migrate schema: %v", err)
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	svc := historian.New(cache.NewEventQueue(rdb, cfg.TurnQueueName), db,
		cfg.HistorianBatchSize, cfg.HistorianFlushInterval, logger)

	logger.WithField("queue", cfg.TurnQueueName).Info("historian service running")
	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("historian stopped: %v", err)
		return
	}
	logger.Info("historian stopped")
}
