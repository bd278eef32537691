// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/promptwars/internal/auth"
	"github.com/jason-s-yu/promptwars/internal/cache"
	"github.com/jason-s-yu/promptwars/internal/catalog"
	"github.com/jason-s-yu/promptwars/internal/config"
	"github.com/jason-s-yu/promptwars/internal/game"
	"github.com/jason-s-yu/promptwars/internal/handlers"
	"github.com/jason-s-yu/promptwars/internal/oracle"
	"github.com/jason-s-yu/promptwars/internal/rating"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	cards, err := catalog.Default()
	if err != nil {
		logger.Fatalf("failed to load card catalog: %v", err)
	}

	provider, err := oracle.NewProvider(cfg.LLM, &http.Client{})
	if err != nil {
		logger.Fatalf("failed to configure judge: %v", err)
	}
	judge := oracle.NewJudge(provider, cfg.JudgeTimeout, logger)
	if !judge.IsAvailable(ctx) {
		logger.Warnf("judge provider %s (%s) is not reachable, turns will fail until it is", provider.Name(), provider.Model())
	}

	ratings := cache.NewRatingStore(rdb)
	rooms := handlers.NewRooms(logger)
	games := game.NewService(cards, judge, cache.NewGameStore(rdb, cfg.GameTTL), rating.NewEngine(ratings),
		game.WithLogger(logger),
		game.WithPublisher(game.Publishers{cache.NewEventQueue(rdb, cfg.TurnQueueName), rooms}),
	)

	sessions, err := auth.NewSessions(cfg.TokenExpire)
	if err != nil {
		logger.Fatalf("failed to initialise sessions: %v", err)
	}

	server := handlers.NewServer(handlers.Deps{
		Games:    games,
		Catalog:  cards,
		Judge:    judge,
		Ratings:  ratings,
		Queue:    cache.NewMatchQueue(rdb),
		Sessions: sessions,
		Rooms:    rooms,
		Logger:   logger,
		Checks: map[string]func(context.Context) error{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":     srv.Addr,
		"provider": provider.Name(),
		"model":    provider.Model(),
	}).Info("Running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using debug", cfg.LogLevel)
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
}
