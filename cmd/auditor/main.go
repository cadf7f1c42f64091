package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/sv1nxmmvt/fincontrol/internal/clients/kafka"
	"github.com/sv1nxmmvt/fincontrol/internal/config"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/audit"
	"github.com/sv1nxmmvt/fincontrol/internal/model/storage"
)

func main() {
	logger.Info("Auditor init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres", zap.Error(err))
	}

	recorder := audit.NewRecorder(db)

	consumer, err := kafka.NewConsumer(conf.Kafka(), recorder)
	if err != nil {
		logger.Fatal("failed to init kafka consumer", zap.Error(err))
	}

	logger.Info("Auditor init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = consumer.StartConsuming(ctx); err != nil {
		logger.Fatal("failed to start consuming", zap.Error(err))
	}
}
