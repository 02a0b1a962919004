package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mission-budget/spender/internal/clients/cache"
	"github.com/mission-budget/spender/internal/clients/kafka"
	"github.com/mission-budget/spender/internal/clients/tg"
	"github.com/mission-budget/spender/internal/config"
	"github.com/mission-budget/spender/internal/logger"
	"github.com/mission-budget/spender/internal/model/engine"
	"github.com/mission-budget/spender/internal/model/messages"
	"github.com/mission-budget/spender/internal/model/storage"
	"github.com/mission-budget/spender/internal/tracing"
)

const serviceName = "spender"

func main() {
	logger.Info("Spender init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	closer, err := tracing.Init(serviceName)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() { _ = closer.Close() }()

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init telegram client", zap.Error(err))
	}

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres", zap.Error(err))
	}

	mc, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached", zap.Error(err))
	}

	producer, err := kafka.NewProducer(conf.Kafka())
	if err != nil {
		logger.Fatal("failed to init kafka producer", zap.Error(err))
	}
	defer producer.Close()

	budgetEngine := engine.NewService(db)
	msgService := messages.NewService(client, budgetEngine, producer, mc, conf.App())

	go serveMetrics(conf.App().MetricsAddr())

	logger.Info("Spender init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client.ListenUpdates(ctx, msgService)
}

func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
