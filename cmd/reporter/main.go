package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/mission-budget/spender/internal/clients/cache"
	"github.com/mission-budget/spender/internal/clients/kafka"
	"github.com/mission-budget/spender/internal/clients/tg"
	"github.com/mission-budget/spender/internal/config"
	"github.com/mission-budget/spender/internal/logger"
	"github.com/mission-budget/spender/internal/model/engine"
	"github.com/mission-budget/spender/internal/model/reports"
	"github.com/mission-budget/spender/internal/model/storage"
	"github.com/mission-budget/spender/internal/tracing"
)

const serviceName = "spender-reporter"

func main() {
	logger.Info("Reporter init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	closer, err := tracing.Init(serviceName)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() { _ = closer.Close() }()

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres", zap.Error(err))
	}

	mc, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached", zap.Error(err))
	}

	sender, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init telegram client", zap.Error(err))
	}

	budgetEngine := engine.NewService(db)
	generator := reports.NewGenerator(budgetEngine)
	worker := reports.NewWorker(generator, mc, sender)

	consumer, err := kafka.NewConsumer(conf.Kafka(), worker)
	if err != nil {
		logger.Fatal("failed to init kafka consumer", zap.Error(err))
	}

	logger.Info("Reporter init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = consumer.StartConsuming(ctx); err != nil {
		logger.Fatal("failed to start consuming", zap.Error(err))
	}
}
