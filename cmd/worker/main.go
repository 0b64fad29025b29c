package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/adapters/event"
	"github.com/khoahotran/portli/adapters/persistence"
	analyticsUC "github.com/khoahotran/portli/internal/application/usecase/analytics"
	"github.com/khoahotran/portli/internal/config"
	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("FATAL: cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	appLogger.Info("Starting Portli view stats worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Kafka brokers are not configured", nil)
	}

	if err := persistence.RunMigrations(cfg.DB.MigrationsPath, cfg.DB.DSN, appLogger); err != nil {
		appLogger.Fatal("cannot run migrations", err)
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	var counter analytics.Counter
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Redis", err)
		}
		defer redisClient.Close()
		counter = persistence.NewRedisViewCounter(redisClient)
	}

	viewStatsRepo := persistence.NewPostgresViewStatsRepo(dbPool, appLogger)
	recordViewUC := analyticsUC.NewRecordViewUseCase(viewStatsRepo, counter, appLogger)

	viewConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicPortfolioViews,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer viewConsumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicPortfolioViews), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := viewConsumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		ev, err := event.DecodeViewEvent(msg.Value)
		if err != nil {
			appLogger.Warn("Skipping malformed view event", zap.Error(err), zap.Int64("offset", msg.Offset))
			commitMessage(ctx, viewConsumer, msg, appLogger)
			continue
		}

		if err := recordViewUC.Execute(ctx, ev); err != nil {
			if errors.Is(err, apperror.ErrInvalidInput) {
				appLogger.Warn("Skipping invalid view event", zap.Error(err), zap.String("username", ev.Username))
				commitMessage(ctx, viewConsumer, msg, appLogger)
				continue
			}
			appLogger.Error("Failed to record view", err, zap.String("username", ev.Username))
			continue
		}

		commitMessage(ctx, viewConsumer, msg, appLogger)
	}
}

func commitMessage(ctx context.Context, consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(ctx, msg); err != nil {
		log.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}
